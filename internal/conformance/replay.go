package conformance

import (
	"context"
	"log/slog"

	"github.com/roach88/minrx/internal/store"
)

// ReplayResult is the fresh outcome of one stored case.
type ReplayResult struct {
	Stored store.Case
	Now    Case
}

// Fixed reports whether the case now agrees with the oracle.
func (r ReplayResult) Fixed() bool {
	return r.Now.Agree()
}

// ReplayReport summarizes a replay of stored cases.
type ReplayReport struct {
	Results []ReplayResult
	Fixed   int
	Failing int
}

// OK reports whether every replayed case now agrees.
func (r ReplayReport) OK() bool {
	return r.Failing == 0
}

// Replay re-checks stored cases against the current compiler and VM.
// Cases are processed in the given order; a cancelled context stops the
// replay and returns the partial report with the context's error.
func (c *Checker) Replay(ctx context.Context, cases []store.Case) (ReplayReport, error) {
	var report ReplayReport

	for _, stored := range cases {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		now := c.Check(stored.Pattern, stored.Subject)
		result := ReplayResult{Stored: stored, Now: now}
		report.Results = append(report.Results, result)

		if result.Fixed() {
			report.Fixed++
			slog.Debug("stored case now agrees", "id", stored.ID, "pattern", stored.Pattern.String())
			continue
		}
		report.Failing++
		slog.Warn("stored case still disagrees",
			"id", stored.ID,
			"pattern", stored.Pattern.String(),
			"subject", stored.Subject,
			"vm", now.VM,
			"oracle", now.Oracle,
		)
	}

	return report, nil
}
