package conformance

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/minrx/internal/compiler"
	"github.com/roach88/minrx/internal/naive"
	"github.com/roach88/minrx/internal/pattern"
	"github.com/roach88/minrx/internal/store"
	"github.com/roach88/minrx/internal/vm"
)

// memRecorder is an in-memory Recorder for tests.
type memRecorder struct {
	begun    []store.Run
	finished []store.Run
	cases    []store.Case
	failOn   string
}

func (r *memRecorder) BeginRun(_ context.Context, run store.Run) error {
	if r.failOn == "begin" {
		return errors.New("begin failed")
	}
	r.begun = append(r.begun, run)
	return nil
}

func (r *memRecorder) RecordCase(_ context.Context, c store.Case) (bool, error) {
	r.cases = append(r.cases, c)
	return true, nil
}

func (r *memRecorder) FinishRun(_ context.Context, run store.Run) error {
	r.finished = append(r.finished, run)
	return nil
}

func createTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCheck(t *testing.T) {
	abc := pattern.Star(pattern.Alt(pattern.Lit("a"), pattern.Lit("b"), pattern.Lit("c")))
	nested := pattern.Star(pattern.Concat(abc, abc))

	c := NewChecker(nil)

	accepted := c.Check(nested, "aaaabbbb")
	assert.True(t, accepted.VM)
	assert.True(t, accepted.Oracle)
	assert.True(t, accepted.Agree())
	assert.NoError(t, accepted.Err)

	rejected := c.Check(nested, "abd")
	assert.False(t, rejected.VM)
	assert.False(t, rejected.Oracle)
	assert.True(t, rejected.Agree())
}

func TestCheck_StepBudget(t *testing.T) {
	c := NewChecker(nil, WithMaxSteps(10))

	got := c.Check(pattern.Star(pattern.Lit("a")), strings.Repeat("a", 100))
	assert.Error(t, got.Err)
	assert.True(t, got.Exhausted())
	assert.False(t, got.Agree())
}

func TestOracleEquivalence_Random(t *testing.T) {
	gen := NewGenerator(20240601, DefaultGeneratorConfig())
	c := NewChecker(gen, WithRunIDGenerator(NewFixedGenerator("run-1")))

	sum, err := c.Run(context.Background(), 2000)
	require.NoError(t, err)

	for _, f := range sum.Failures {
		t.Errorf("disagreement: pattern %s subject %q vm=%v oracle=%v", f.Pattern, f.Subject, f.VM, f.Oracle)
	}
	assert.True(t, sum.OK())
	assert.Equal(t, 2000, sum.Checked+sum.Exhausted)
	assert.Greater(t, sum.Accepted, 0)
	assert.Less(t, sum.Accepted, sum.Checked)
}

func TestOracleEquivalence_ExhaustiveSubjects(t *testing.T) {
	gen := NewGenerator(7, DefaultGeneratorConfig())

	var subjects []string
	var grow func(prefix string)
	grow = func(prefix string) {
		subjects = append(subjects, prefix)
		if len(prefix) == 5 {
			return
		}
		grow(prefix + "a")
		grow(prefix + "b")
	}
	grow("")

	for i := 0; i < 200; i++ {
		p := gen.Pattern()
		prog := compiler.Compile(p)
		for _, s := range subjects {
			got, err := vm.Run(prog, s, vm.WithMaxSteps(DefaultMaxSteps))
			require.NoError(t, err)
			require.Equal(t, naive.Match(p, s), got, "pattern %s subject %q", p, s)
		}
	}
}

func TestAdversarialSubjects(t *testing.T) {
	patterns := []pattern.Node{
		pattern.Lit("abc"),
		pattern.Concat(pattern.Lit("ab"), pattern.Lit("abc")),
		pattern.Star(pattern.Lit("ab")),
		pattern.Alt(pattern.Lit("abcd"), pattern.Lit("abc")),
		pattern.Star(pattern.Concat(pattern.Star(pattern.Lit("a")), pattern.Lit(""))),
	}
	subjects := []string{"", "a", "ab", "abab", "aba", "abcab", "abcabc", "\x00", "\xff"}

	c := NewChecker(nil)
	for _, p := range patterns {
		for _, s := range subjects {
			assert.NotPanics(t, func() {
				got := c.Check(p, s)
				assert.True(t, got.Agree(), "pattern %s subject %q", p, s)
			})
		}
	}
}

func TestRun_RecordsRun(t *testing.T) {
	rec := &memRecorder{}
	c := NewChecker(NewGenerator(1, DefaultGeneratorConfig()),
		WithRecorder(rec),
		WithRunIDGenerator(NewFixedGenerator("run-1")),
	)

	sum, err := c.Run(context.Background(), 50)
	require.NoError(t, err)

	assert.Equal(t, "run-1", sum.RunID)
	assert.Equal(t, uint64(1), sum.Seed)
	assert.Equal(t, 50, sum.Requested)

	require.Len(t, rec.begun, 1)
	assert.Equal(t, store.Run{ID: "run-1", Seed: 1, Requested: 50}, rec.begun[0])

	require.Len(t, rec.finished, 1)
	assert.Equal(t, "run-1", rec.finished[0].ID)
	assert.Equal(t, sum.Checked, rec.finished[0].Checked)
	assert.Empty(t, rec.cases)
}

func TestRun_WithStore(t *testing.T) {
	s := createTestStore(t)
	c := NewChecker(NewGenerator(9, DefaultGeneratorConfig()),
		WithRecorder(s),
		WithRunIDGenerator(NewFixedGenerator("run-1")),
	)

	sum, err := c.Run(context.Background(), 100)
	require.NoError(t, err)

	run, err := s.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.True(t, run.Finished)
	assert.Equal(t, sum.Checked, run.Checked)
	assert.Equal(t, 0, run.Disagreements)
}

func TestRun_BeginError(t *testing.T) {
	c := NewChecker(NewGenerator(1, DefaultGeneratorConfig()),
		WithRecorder(&memRecorder{failOn: "begin"}),
		WithRunIDGenerator(NewFixedGenerator("run-1")),
	)

	_, err := c.Run(context.Background(), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin failed")
}

func TestRun_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewChecker(NewGenerator(1, DefaultGeneratorConfig()), WithRunIDGenerator(NewFixedGenerator("run-1")))
	sum, err := c.Run(ctx, 10)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, sum.Checked)
}

func TestRun_NoGenerator(t *testing.T) {
	_, err := NewChecker(nil).Run(context.Background(), 1)
	assert.Error(t, err)
}

func TestReplay(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.BeginRun(ctx, store.Run{ID: "run-1", Seed: 1, Requested: 1}))

	// A verdict pair recorded by an older, broken build.
	_, err := s.RecordCase(ctx, store.Case{
		RunID:   "run-1",
		Pattern: pattern.Concat(pattern.Star(pattern.Lit("a")), pattern.Lit("a")),
		Subject: "aa",
		VM:      false,
		Oracle:  true,
	})
	require.NoError(t, err)

	cases, err := s.Cases(ctx)
	require.NoError(t, err)

	report, err := NewChecker(nil).Replay(ctx, cases)
	require.NoError(t, err)

	assert.True(t, report.OK())
	assert.Equal(t, 1, report.Fixed)
	assert.Equal(t, 0, report.Failing)
	require.Len(t, report.Results, 1)
	assert.True(t, report.Results[0].Now.VM)
	assert.True(t, report.Results[0].Now.Oracle)
	assert.False(t, report.Results[0].Stored.VM)
}

func TestReplay_Exhausted(t *testing.T) {
	cases := []store.Case{{
		ID:      1,
		Pattern: pattern.Star(pattern.Lit("a")),
		Subject: strings.Repeat("a", 50),
	}}

	report, err := NewChecker(nil, WithMaxSteps(5)).Replay(context.Background(), cases)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failing)
	assert.False(t, report.OK())
}

func TestReplay_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewChecker(nil).Replay(ctx, []store.Case{{Pattern: pattern.Lit("a"), Subject: "a"}})
	assert.ErrorIs(t, err, context.Canceled)
}
