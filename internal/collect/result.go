package collect

import (
	"encoding/json"
	"fmt"
	"time"
)

// State is a collection run's lifecycle position. Runs move
// pending -> fetching -> validating -> writing -> completed, or to failed
// from any point. A zero-row fetch jumps straight from fetching to
// completed without touching the writer.
type State string

const (
	StatePending    State = "pending"
	StateFetching   State = "fetching"
	StateValidating State = "validating"
	StateWriting    State = "writing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Error kinds carried on a failed Result. Provider errors mean nothing was
// written; storage errors mean the write transaction rolled back; config
// errors mean the parameters were rejected before any work started.
const (
	ErrKindProvider = "provider"
	ErrKindStorage  = "storage"
	ErrKindConfig   = "config"
)

// Result summarizes one collection run. Status is always completed or
// failed on a returned Result; the intermediate states only appear while
// the run is in flight.
type Result struct {
	Source   string        `json:"source"`
	Window   string        `json:"window"`
	Status   State         `json:"status"`
	Records  int           `json:"records"`
	Duration time.Duration `json:"-"`
	ErrKind  string        `json:"error_kind,omitempty"`
	Err      string        `json:"error,omitempty"`
	Issues   []string      `json:"issues,omitempty"`
}

// Failed reports whether the run ended in failure.
func (r Result) Failed() bool {
	return r.Status == StateFailed
}

// Summary renders a one-line human description of the run.
func (r Result) Summary() string {
	if r.Failed() {
		return fmt.Sprintf("%s [%s] failed (%s): %s", r.Source, r.Window, r.ErrKind, r.Err)
	}
	s := fmt.Sprintf("%s [%s] completed: %d records in %s",
		r.Source, r.Window, r.Records, r.Duration.Round(time.Millisecond))
	if len(r.Issues) > 0 {
		s += fmt.Sprintf(", %d validation issues", len(r.Issues))
	}
	return s
}

// MarshalJSON adds a duration_seconds field so API consumers do not have to
// interpret Go duration integers.
func (r Result) MarshalJSON() ([]byte, error) {
	type alias Result
	return json.Marshal(struct {
		alias
		DurationSeconds float64 `json:"duration_seconds"`
	}{alias(r), r.Duration.Seconds()})
}
