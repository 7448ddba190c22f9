package ir

import (
	"encoding/json"
	"fmt"
)

// TableSpec is a compiled clause table.
type TableSpec struct {
	Name    string       `json:"name"`
	Doc     string       `json:"doc,omitempty"`
	Clauses []ClauseSpec `json:"clauses"`
}

// ClauseSpec is one (patterns, handler) entry in declaration order.
type ClauseSpec struct {
	Patterns []PatternSpec `json:"patterns"`
	Handler  HandlerSpec   `json:"handler"`
}

// PatternKind names a pattern variant in compiled form.
type PatternKind string

const (
	PatternWildcard  PatternKind = "wildcard"
	PatternLiteral   PatternKind = "literal"
	PatternType      PatternKind = "type"
	PatternJust      PatternKind = "just"
	PatternPredicate PatternKind = "pred"
)

// PatternSpec is a compiled pattern. Exactly one of Value, Tag, Inner or
// Pred is meaningful, selected by Kind.
type PatternSpec struct {
	Kind  PatternKind  `json:"kind"`
	Value IRValue      `json:"value,omitempty"`
	Tag   string       `json:"tag,omitempty"`
	Inner *PatternSpec `json:"inner,omitempty"`
	Pred  string       `json:"pred,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler, decoding Value as an IRValue.
func (p *PatternSpec) UnmarshalJSON(data []byte) error {
	var aux struct {
		Kind  PatternKind     `json:"kind"`
		Value json.RawMessage `json:"value"`
		Tag   string          `json:"tag"`
		Inner *PatternSpec    `json:"inner"`
		Pred  string          `json:"pred"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*p = PatternSpec{Kind: aux.Kind, Tag: aux.Tag, Inner: aux.Inner, Pred: aux.Pred}
	if aux.Kind == PatternLiteral {
		if len(aux.Value) == 0 {
			p.Value = IRNull{}
			return nil
		}
		v, err := UnmarshalIRValue(aux.Value)
		if err != nil {
			return fmt.Errorf("pattern value: %w", err)
		}
		p.Value = v
	}
	return nil
}

// HandlerSpec references a callable by name, optionally partially applied
// to Args. Fn is a qualified catalog name ("lambda.id") or the name of
// another table.
type HandlerSpec struct {
	Fn   string  `json:"fn"`
	Args IRArray `json:"args,omitempty"`
}

// IR returns the table as an IRObject, used for hashing.
func (t TableSpec) IR() IRObject {
	clauses := make(IRArray, len(t.Clauses))
	for i, c := range t.Clauses {
		clauses[i] = c.IR()
	}
	obj := IRObject{
		"name":    IRString(t.Name),
		"clauses": clauses,
	}
	if t.Doc != "" {
		obj["doc"] = IRString(t.Doc)
	}
	return obj
}

// IR returns the clause as an IRObject.
func (c ClauseSpec) IR() IRObject {
	pats := make(IRArray, len(c.Patterns))
	for i, p := range c.Patterns {
		pats[i] = p.IR()
	}
	handler := IRObject{"fn": IRString(c.Handler.Fn)}
	if len(c.Handler.Args) > 0 {
		handler["args"] = c.Handler.Args
	}
	return IRObject{"patterns": pats, "handler": handler}
}

// IR returns the pattern as an IRObject.
func (p PatternSpec) IR() IRObject {
	obj := IRObject{"kind": IRString(p.Kind)}
	switch p.Kind {
	case PatternLiteral:
		if p.Value == nil {
			obj["value"] = IRNull{}
		} else {
			obj["value"] = p.Value
		}
	case PatternType:
		obj["tag"] = IRString(p.Tag)
	case PatternJust:
		if p.Inner != nil {
			obj["inner"] = p.Inner.IR()
		}
	case PatternPredicate:
		obj["pred"] = IRString(p.Pred)
	}
	return obj
}

// Call outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// CallableKey marks a result that is itself a callable (for example a
// partial application) and is recorded by description only.
const CallableKey = "$callable"

// CallRecord is one recorded call in a session.
type CallRecord struct {
	ID        string `json:"id"` // Content-addressed hash
	SessionID string `json:"session_id"`
	Seq       int64  `json:"seq"` // Logical clock
	Name      string `json:"name"`

	// Args holds one IRArray per argument batch.
	Args IRArray `json:"args"`

	Outcome      string  `json:"outcome"`
	Result       IRValue `json:"result,omitempty"`
	ErrorCode    string  `json:"error_code,omitempty"`
	ErrorMessage string  `json:"error_message,omitempty"`

	// Clause is the index of the clause a table dispatched to on the
	// first batch, or -1.
	Clause int `json:"clause"`

	EngineVersion string `json:"engine_version"`
	IRVersion     string `json:"ir_version"`
}

// UnmarshalJSON implements json.Unmarshaler, decoding Result as an IRValue.
func (c *CallRecord) UnmarshalJSON(data []byte) error {
	type plain CallRecord
	var aux struct {
		plain
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*c = CallRecord(aux.plain)
	c.Result = nil
	if len(aux.Result) > 0 {
		v, err := UnmarshalIRValue(aux.Result)
		if err != nil {
			return fmt.Errorf("call result: %w", err)
		}
		c.Result = v
	}
	return nil
}
