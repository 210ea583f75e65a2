package model

import "time"

// RunKind identifies what a run did.
type RunKind string

const (
	RunKindExtract RunKind = "extract"
	RunKindCompare RunKind = "compare"
	RunKindAnalyze RunKind = "analyze"
)

// RunStatus represents the current state of a run.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one recorded extract, compare or analyze invocation.
type Run struct {
	ID        string     `json:"id" yaml:"id"`
	Kind      RunKind    `json:"kind" yaml:"kind"`
	Status    RunStatus  `json:"status" yaml:"status"`
	Inputs    []string   `json:"inputs" yaml:"inputs"`
	Result    *RunResult `json:"result,omitempty" yaml:"result,omitempty"`
	CreatedAt time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" yaml:"updated_at"`
}

// RunResult holds the outcome of a run. Only the counters relevant to the
// run's kind are set.
type RunResult struct {
	Documents   int            `json:"documents,omitempty" yaml:"documents,omitempty"`
	Failed      int            `json:"failed,omitempty" yaml:"failed,omitempty"`
	Failures    []string       `json:"failures,omitempty" yaml:"failures,omitempty"`
	Rows        int            `json:"rows,omitempty" yaml:"rows,omitempty"`
	FieldsFound map[string]int `json:"fields_found,omitempty" yaml:"fields_found,omitempty"`
	Highlighted int            `json:"highlighted,omitempty" yaml:"highlighted,omitempty"`
	Count       int            `json:"count,omitempty" yaml:"count,omitempty"`
	Warning     string         `json:"warning,omitempty" yaml:"warning,omitempty"`
	Error       string         `json:"error,omitempty" yaml:"error,omitempty"`
	Output      string         `json:"output,omitempty" yaml:"output,omitempty"`
}

// Duration returns how long the run took, as recorded by its timestamps.
func (r Run) Duration() time.Duration {
	return r.UpdatedAt.Sub(r.CreatedAt)
}
