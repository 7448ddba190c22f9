package harness

import "github.com/roach88/vector/internal/ir"

// TraceEvent is one recorded call, as seen by assertions and golden files.
type TraceEvent struct {
	Seq     int64      `json:"seq"`
	Call    string     `json:"call"`
	Args    ir.IRArray `json:"args"`
	Outcome string     `json:"outcome"`
	Result  ir.IRValue `json:"result,omitempty"`
	Error   string     `json:"error,omitempty"`
	Clause  int        `json:"clause"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expectation, law and assertion held.
	Pass bool `json:"pass"`

	// Trace holds every recorded call in seq order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddCall appends a call record to the trace.
func (r *Result) AddCall(rec ir.CallRecord) {
	r.Trace = append(r.Trace, traceEvent(rec))
}

func traceEvent(rec ir.CallRecord) TraceEvent {
	return TraceEvent{
		Seq:     rec.Seq,
		Call:    rec.Name,
		Args:    rec.Args,
		Outcome: rec.Outcome,
		Result:  rec.Result,
		Error:   rec.ErrorCode,
		Clause:  rec.Clause,
	}
}

// IR renders the event for canonical serialization.
func (e TraceEvent) IR() ir.IRObject {
	obj := ir.IRObject{
		"seq":     ir.IRInt(e.Seq),
		"call":    ir.IRString(e.Call),
		"args":    e.Args,
		"outcome": ir.IRString(e.Outcome),
		"clause":  ir.IRInt(e.Clause),
	}
	if e.Args == nil {
		obj["args"] = ir.IRArray{}
	}
	if e.Result != nil {
		obj["result"] = e.Result
	}
	if e.Error != "" {
		obj["error"] = ir.IRString(e.Error)
	}
	return obj
}
