package conformance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/minrx/internal/compiler"
	"github.com/roach88/minrx/internal/naive"
	"github.com/roach88/minrx/internal/pattern"
	"github.com/roach88/minrx/internal/store"
	"github.com/roach88/minrx/internal/vm"
)

// DefaultMaxSteps bounds each VM run during a conformance run. Random
// patterns can be exponential on unlucky subjects; such cases are counted
// as exhausted rather than checked.
const DefaultMaxSteps = 1 << 20

// Recorder persists runs and disagreeing cases. *store.Store implements it.
type Recorder interface {
	BeginRun(ctx context.Context, r store.Run) error
	RecordCase(ctx context.Context, c store.Case) (bool, error)
	FinishRun(ctx context.Context, r store.Run) error
}

// Case is the outcome of checking one (pattern, subject) pair.
type Case struct {
	Pattern pattern.Node
	Subject string
	VM      bool
	Oracle  bool

	// Err is set when the VM run was abandoned, e.g. by the step budget.
	// The oracle is not consulted in that case.
	Err error
}

// Agree reports whether the VM produced a verdict equal to the oracle's.
func (c Case) Agree() bool {
	return c.Err == nil && c.VM == c.Oracle
}

// Exhausted reports whether the VM run hit its step budget.
func (c Case) Exhausted() bool {
	return vm.IsStepsExceededError(c.Err)
}

// Summary reports the tallies of a conformance run.
type Summary struct {
	RunID         string `json:"run_id"`
	Seed          uint64 `json:"seed"`
	Requested     int    `json:"requested"`
	Checked       int    `json:"checked"`
	Accepted      int    `json:"accepted"`
	Disagreements int    `json:"disagreements"`
	Exhausted     int    `json:"exhausted"`
	Recorded      int    `json:"recorded"`

	// Failures holds the disagreeing cases in the order they were found.
	Failures []Case `json:"-"`
}

// OK reports whether every checked case agreed.
func (s Summary) OK() bool {
	return s.Disagreements == 0
}

// Checker compares compiled VM verdicts with the naive oracle.
type Checker struct {
	gen      *Generator
	maxSteps int
	recorder Recorder
	runIDs   RunIDGenerator
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithMaxSteps sets the per-run VM step budget. Zero means unlimited.
func WithMaxSteps(n int) CheckerOption {
	return func(c *Checker) {
		c.maxSteps = n
	}
}

// WithRecorder persists runs and disagreements to r.
func WithRecorder(r Recorder) CheckerOption {
	return func(c *Checker) {
		c.recorder = r
	}
}

// WithRunIDGenerator sets the run ID source. Default: UUIDv7Generator.
func WithRunIDGenerator(g RunIDGenerator) CheckerOption {
	return func(c *Checker) {
		c.runIDs = g
	}
}

// NewChecker creates a Checker drawing cases from gen. gen may be nil when
// only Check and Replay are used.
func NewChecker(gen *Generator, opts ...CheckerOption) *Checker {
	c := &Checker{
		gen:      gen,
		maxSteps: DefaultMaxSteps,
		runIDs:   UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check runs one pair through the VM and the oracle.
func (c *Checker) Check(p pattern.Node, subject string) Case {
	out := Case{Pattern: p, Subject: subject}

	ok, err := vm.Run(compiler.Compile(p), subject, vm.WithMaxSteps(c.maxSteps))
	if err != nil {
		out.Err = err
		return out
	}
	out.VM = ok
	out.Oracle = naive.Match(p, subject)
	return out
}

// Run checks n generated cases. Disagreements are logged, collected in the
// summary and recorded when a Recorder is configured. Run stops early with
// the context's error if ctx is cancelled; the partial summary is returned.
func (c *Checker) Run(ctx context.Context, n int) (Summary, error) {
	if c.gen == nil {
		return Summary{}, fmt.Errorf("conformance run: no generator")
	}

	sum := Summary{
		RunID:     c.runIDs.Generate(),
		Seed:      c.gen.Seed(),
		Requested: n,
	}

	if c.recorder != nil {
		err := c.recorder.BeginRun(ctx, store.Run{ID: sum.RunID, Seed: sum.Seed, Requested: n})
		if err != nil {
			return sum, fmt.Errorf("conformance run: %w", err)
		}
	}

	slog.Info("conformance run starting", "run_id", sum.RunID, "seed", sum.Seed, "count", n)

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			slog.Info("conformance run stopping: context cancelled", "run_id", sum.RunID, "checked", sum.Checked)
			return sum, err
		}

		p := c.gen.Pattern()
		subject := c.gen.Subject(p)
		result := c.Check(p, subject)

		switch {
		case result.Exhausted():
			sum.Exhausted++
			slog.Debug("case exhausted step budget",
				"pattern", p.String(),
				"pattern_size", pattern.Size(p),
				"subject", subject,
			)
			continue
		case result.Err != nil:
			return sum, fmt.Errorf("conformance run: case %d: %w", i, result.Err)
		}

		sum.Checked++
		if result.VM {
			sum.Accepted++
		}
		if result.Agree() {
			continue
		}

		sum.Disagreements++
		sum.Failures = append(sum.Failures, result)
		slog.Warn("verdict disagreement",
			"run_id", sum.RunID,
			"pattern", p.String(),
			"pattern_size", pattern.Size(p),
			"subject", subject,
			"vm", result.VM,
			"oracle", result.Oracle,
		)

		if c.recorder != nil {
			added, err := c.recorder.RecordCase(ctx, store.Case{
				RunID:   sum.RunID,
				Pattern: p,
				Subject: subject,
				VM:      result.VM,
				Oracle:  result.Oracle,
			})
			if err != nil {
				return sum, fmt.Errorf("conformance run: %w", err)
			}
			if added {
				sum.Recorded++
			}
		}
	}

	if c.recorder != nil {
		err := c.recorder.FinishRun(ctx, store.Run{
			ID:            sum.RunID,
			Checked:       sum.Checked,
			Disagreements: sum.Disagreements,
			Exhausted:     sum.Exhausted,
		})
		if err != nil {
			return sum, fmt.Errorf("conformance run: %w", err)
		}
	}

	slog.Info("conformance run finished",
		"run_id", sum.RunID,
		"checked", sum.Checked,
		"disagreements", sum.Disagreements,
		"exhausted", sum.Exhausted,
	)
	return sum, nil
}
