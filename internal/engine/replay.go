package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/roach88/vector/internal/ir"
)

// Divergence is one field of a recorded call that replay could not
// reproduce.
type Divergence struct {
	Seq      int64  `json:"seq"`
	Name     string `json:"name"`
	Field    string `json:"field"`
	Recorded string `json:"recorded"`
	Replayed string `json:"replayed"`
}

// ReplayReport summarizes a replay.
type ReplayReport struct {
	Session     string       `json:"session"`
	Calls       int          `json:"calls"`
	Divergences []Divergence `json:"divergences"`
}

// OK reports whether every call reproduced exactly.
func (r ReplayReport) OK() bool {
	return len(r.Divergences) == 0
}

// ErrNoStore is returned by Replay on an engine without a store.
var ErrNoStore = errors.New("engine: no store configured")

// Replay re-evaluates every recorded call of a session and compares the
// outcome with the log.
//
// Calls are content-addressed and evaluation is deterministic, so a
// replay against the same catalog and tables reproduces each record
// byte for byte. Replay compares:
//   - the call ID, recomputed from session, name, args and seq
//   - outcome and error code
//   - the canonical JSON of the result
//   - the selected clause
//
// If the engine has no tables loaded, the tables recorded for the session
// are loaded first. Replay never writes to the store and never advances
// the clock.
func (e *Engine) Replay(ctx context.Context, sessionID string) (ReplayReport, error) {
	report := ReplayReport{Session: sessionID, Divergences: []Divergence{}}
	if e.store == nil {
		return report, ErrNoStore
	}

	if len(e.Tables()) == 0 {
		specs, err := e.store.ReadSessionTables(ctx, sessionID)
		if err != nil {
			return report, fmt.Errorf("replay: %w", err)
		}
		if len(specs) > 0 {
			if err := e.loadTables(ctx, specs, false); err != nil {
				return report, fmt.Errorf("replay: load recorded tables: %w", err)
			}
		}
	}

	records, err := e.store.ReadSession(ctx, sessionID)
	if err != nil {
		return report, fmt.Errorf("replay: %w", err)
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Calls++
		report.Divergences = append(report.Divergences, e.replayOne(rec)...)
	}

	e.logger.Info("replay finished",
		"session", sessionID,
		"calls", report.Calls,
		"divergences", len(report.Divergences),
	)
	return report, nil
}

func (e *Engine) replayOne(rec ir.CallRecord) []Divergence {
	var out []Divergence
	diverge := func(field, recorded, replayed string) {
		out = append(out, Divergence{
			Seq:      rec.Seq,
			Name:     rec.Name,
			Field:    field,
			Recorded: recorded,
			Replayed: replayed,
		})
	}

	if id, err := ir.CallID(rec.SessionID, rec.Name, rec.Args, rec.Seq); err != nil {
		diverge("id", rec.ID, err.Error())
	} else if id != rec.ID {
		diverge("id", rec.ID, id)
	}

	batches := make([]ir.IRArray, len(rec.Args))
	for i, b := range rec.Args {
		arr, ok := b.(ir.IRArray)
		if !ok {
			diverge("args", ir.TypeName(b), "array")
			return out
		}
		batches[i] = arr
	}

	replayed := ir.CallRecord{Clause: -1}
	value, sel, err := e.evaluate(rec.Name, batches)
	if err == nil {
		replayed.Result, err = encodeResult(rec.Name, value)
	}
	applyOutcome(&replayed, sel, err)

	if replayed.Outcome != rec.Outcome {
		diverge("outcome", rec.Outcome, replayed.Outcome)
	}
	if replayed.ErrorCode != rec.ErrorCode {
		diverge("error_code", rec.ErrorCode, replayed.ErrorCode)
	}
	if replayed.Clause != rec.Clause {
		diverge("clause", fmt.Sprint(rec.Clause), fmt.Sprint(replayed.Clause))
	}

	recorded, replayedJSON := canonical(rec.Result), canonical(replayed.Result)
	if !bytes.Equal(recorded, replayedJSON) {
		diverge("result", string(recorded), string(replayedJSON))
	}
	return out
}

// canonical renders v for comparison; nil renders empty.
func canonical(v ir.IRValue) []byte {
	if v == nil {
		return nil
	}
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return []byte(err.Error())
	}
	return data
}
