package domain

// RunMeta summarises a stored run.
type RunMeta struct {
	RunID           string  `json:"run_id"`
	Total           int     `json:"total"`
	Passed          int     `json:"passed"`
	Failed          int     `json:"failed"`
	Errored         int     `json:"errored"`
	Bailed          bool    `json:"bailed,omitempty"`
	Aborted         bool    `json:"aborted,omitempty"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Timestamp       string  `json:"timestamp"`
}

// ExampleFailure is the stored detail of a failed or errored example.
type ExampleFailure struct {
	Key      string   `json:"key"`
	Path     []string `json:"path"`
	Name     string   `json:"name"`
	Source   string   `json:"source,omitempty"`
	Outcome  Outcome  `json:"outcome"`
	Message  string   `json:"message"`
	Expected string   `json:"expected,omitempty"`
	Actual   string   `json:"actual,omitempty"`
	Stack    []string `json:"stack,omitempty"`
	Reviewed bool     `json:"reviewed,omitempty"` // toggled in the failures viewer
}

// ResultRow is the stored summary of one executed example.
type ResultRow struct {
	Key        string  `json:"key"`
	Outcome    Outcome `json:"outcome"`
	DurationMS int64   `json:"duration_ms"`
}

// RunRecord is the persisted form of a run.
type RunRecord struct {
	Meta    RunMeta          `json:"meta"`
	Results []ResultRow      `json:"results"`
	Details []ExampleFailure `json:"details"`
}

// FailedKeys returns the keys of every stored failure.
func (r *RunRecord) FailedKeys() map[string]struct{} {
	keys := make(map[string]struct{}, len(r.Details))
	for _, d := range r.Details {
		keys[d.Key] = struct{}{}
	}
	return keys
}
