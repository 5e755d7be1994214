package audit

import (
	"errors"
	"fmt"

	"github.com/ppiankov/creditwatch/internal/model"
)

// Outcome values recorded for a tool call.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// KindInternal is recorded for failures that carry no typed error kind.
const KindInternal = "internal"

// Entry is one line in the hash-chained JSONL audit log. It records that a
// tool ran and how it ended, never the applicant figures it ran on.
// Fields are plain values so json.Marshal output is stable for hashing.
type Entry struct {
	Timestamp  string `json:"ts"`
	TraceID    string `json:"trace_id"`
	Tool       string `json:"tool"`
	Outcome    string `json:"outcome"`
	ErrorKind  string `json:"error_kind,omitempty"`
	ErrorField string `json:"error_field,omitempty"`
	ElapsedMS  int64  `json:"elapsed_ms"`
	ConfigHash string `json:"config_hash"`
	PrevHash   string `json:"prev_hash"`
}

// check reports why an entry could not have been written by RecordCall.
func (e Entry) check() error {
	if e.Tool == "" {
		return errors.New("missing tool")
	}
	switch e.Outcome {
	case OutcomeOK:
		if e.ErrorKind != "" || e.ErrorField != "" {
			return fmt.Errorf("ok outcome carries error_kind %q", e.ErrorKind)
		}
	case OutcomeError:
		if e.ErrorKind == "" {
			return errors.New("error outcome without error_kind")
		}
		if e.ErrorKind != KindInternal && !model.ErrorKind(e.ErrorKind).Known() {
			return fmt.Errorf("unknown error_kind %q", e.ErrorKind)
		}
	default:
		return fmt.Errorf("unknown outcome %q", e.Outcome)
	}
	return nil
}
