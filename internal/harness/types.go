package harness

import (
	"github.com/roach88/minrx/internal/bytecode"
)

// Outcome is the observed behavior of one case.
type Outcome struct {
	Subject string `json:"subject"`
	Expect  bool   `json:"expect"`
	VM      bool   `json:"vm"`
	Oracle  bool   `json:"oracle"`
	Steps   int    `json:"steps"`
	Pass    bool   `json:"pass"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Scenario is the scenario name.
	Scenario string `json:"scenario"`

	// Pass indicates overall success: every case matched its expectation
	// on both the VM and the oracle, and every assertion held.
	Pass bool `json:"pass"`

	// Pattern is the display form of the (possibly normalized) pattern.
	Pattern string `json:"pattern"`

	// Fingerprint is the content hash of the pattern.
	Fingerprint string `json:"fingerprint"`

	// Program is the compiled program.
	Program *bytecode.Program `json:"-"`

	// Outcomes holds one entry per case, in scenario order.
	Outcomes []Outcome `json:"outcomes"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(name string) *Result {
	return &Result{
		Scenario: name,
		Pass:     true,
		Outcomes: []Outcome{},
		Errors:   []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
