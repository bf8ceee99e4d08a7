package harness

// TraceEvent is one recorded spike with its neuron name resolved.
type TraceEvent struct {
	Neuron int    `json:"neuron"`
	Name   string `json:"name"`
	Step   int    `json:"step"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if the run matched expect_error and every assertion held.
	Pass bool `json:"pass"`

	// Steps is the number of steps the circuit ran for.
	Steps int `json:"steps"`

	// Trace holds the recorded spikes as read back from the store.
	Trace []TraceEvent `json:"trace"`

	// Errors contains assertion and execution failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// RunID identifies the stored run; empty if the circuit was rejected.
	RunID string `json:"run_id,omitempty"`

	// TraceHash is the content hash of the trace.
	TraceHash string `json:"trace_hash,omitempty"`

	// RejectedWith holds the error a rejected circuit produced.
	RejectedWith string `json:"rejected_with,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
