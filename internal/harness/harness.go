package harness

import (
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/minrx/internal/bytecode"
	"github.com/roach88/minrx/internal/compiler"
	"github.com/roach88/minrx/internal/naive"
	"github.com/roach88/minrx/internal/pattern"
	"github.com/roach88/minrx/internal/vm"
)

// Runner executes scenarios.
type Runner struct {
	logger   *slog.Logger
	maxSteps int
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger for scenario progress and VM tracing.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithMaxSteps bounds every VM run. Zero means unlimited.
func WithMaxSteps(n int) RunnerOption {
	return func(r *Runner) {
		r.maxSteps = n
	}
}

// NewRunner creates a Runner. Logs are discarded unless WithLogger is given.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes a scenario with a default Runner.
func Run(scenario *Scenario) (*Result, error) {
	return NewRunner().Run(scenario)
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Normalize the pattern if requested and compile it
// 2. Run every case on a fresh VM and on the oracle
// 3. Compare both verdicts with the expectation
// 4. Evaluate assertions
//
// A returned error means the scenario could not be executed (for example a
// VM run exceeded the step budget); expectation failures are reported in
// the Result instead.
func (r *Runner) Run(scenario *Scenario) (*Result, error) {
	node := scenario.Pattern.Node
	if node == nil {
		return nil, fmt.Errorf("scenario %s: pattern is empty", scenario.Name)
	}
	if scenario.Normalize {
		node = pattern.Normalize(node, norm.NFC)
	}

	fp, err := pattern.Fingerprint(node)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	prog := compiler.Compile(node)
	if err := bytecode.Validate(prog); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	res := NewResult(scenario.Name)
	res.Pattern = node.String()
	res.Fingerprint = fp
	res.Program = prog

	r.logger.Info("running scenario",
		"scenario", scenario.Name,
		"pattern", res.Pattern,
		"pattern_size", pattern.Size(node),
		"program_len", prog.Len(),
		"cases", len(scenario.Cases),
	)

	for i, c := range scenario.Cases {
		subject := c.Subject
		if scenario.Normalize {
			subject = norm.NFC.String(subject)
		}

		m := vm.New(vm.WithLogger(r.logger), vm.WithMaxSteps(r.maxSteps))
		got, err := m.Run(prog, subject)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: case %d (%q): %w", scenario.Name, i, c.Subject, err)
		}

		out := Outcome{
			Subject: c.Subject,
			Expect:  *c.Expect,
			VM:      got,
			Oracle:  naive.Match(node, subject),
			Steps:   m.Stats().Steps,
		}
		out.Pass = out.VM == out.Expect && out.Oracle == out.Expect
		res.Outcomes = append(res.Outcomes, out)

		if !out.Pass {
			res.AddError(fmt.Sprintf("case %d (%q): expected %v, vm=%v oracle=%v",
				i, c.Subject, out.Expect, out.VM, out.Oracle))
		}
	}

	for _, a := range scenario.Assertions {
		if err := evaluateAssertion(res, a); err != nil {
			res.AddError(err.Error())
		}
	}

	r.logger.Info("scenario finished", "scenario", scenario.Name, "pass", res.Pass)
	return res, nil
}
