package vm

import (
	"log/slog"
	"strings"

	"github.com/roach88/minrx/internal/bytecode"
)

// Stats describes the work done by the most recent run of a Machine.
type Stats struct {
	// Steps is the number of instructions executed.
	Steps int `json:"steps"`

	// Forks is the number of threads pushed by Fork.
	Forks int `json:"forks"`

	// Resumed is the number of threads popped, including the initial one.
	Resumed int `json:"resumed"`

	// PeakStack is the largest number of pending threads at any point.
	PeakStack int `json:"peak_stack"`
}

// Machine runs programs. A Machine carries configuration and the stats of
// its last run; it is not safe for concurrent use. Programs themselves are
// immutable and may be shared between machines.
type Machine struct {
	logger   *slog.Logger
	maxSteps int
	stats    Stats
}

// Option configures a Machine.
type Option func(*Machine)

// WithLogger enables debug tracing of thread scheduling on l.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = l
	}
}

// WithMaxSteps bounds the number of instructions a run may execute.
// Zero (the default) means unlimited.
func WithMaxSteps(n int) Option {
	return func(m *Machine) {
		m.maxSteps = n
	}
}

// New creates a Machine.
func New(opts ...Option) *Machine {
	m := &Machine{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Stats returns the counters of the most recent run.
func (m *Machine) Stats() Stats {
	return m.stats
}

// Run reports whether p accepts the whole of subject.
//
// Run returns a *RuntimeError with ErrCodeMalformedProgram if execution
// reaches a branch outside [0, len(p)] or an unknown opcode, and a
// *StepsExceededError if the step budget runs out. Malformed instructions
// that no thread reaches are not reported.
func (m *Machine) Run(p *bytecode.Program, subject string) (bool, error) {
	m.stats = Stats{}
	quota := &stepQuota{limit: m.maxSteps}
	stack := newThreadStack()
	stack.push(thread{pc: 0, cursor: 0})

	defer func() {
		m.stats.PeakStack = stack.peak
	}()

	for {
		t, ok := stack.pop()
		if !ok {
			m.trace("run rejected", "steps", quota.current)
			return false, nil
		}
		m.stats.Resumed++
		m.trace("resume thread", "pc", t.pc, "cursor", t.cursor, "pending", stack.len())

		accepted, err := m.runThread(p, subject, t, stack, quota)
		m.stats.Steps = quota.current
		if err != nil {
			return false, err
		}
		if accepted {
			m.trace("run accepted", "steps", quota.current)
			return true, nil
		}
	}
}

// runThread advances one thread until it accepts or dies, pushing a
// fallback thread for every Fork it passes.
func (m *Machine) runThread(p *bytecode.Program, subject string, t thread, stack *threadStack, quota *stepQuota) (bool, error) {
	n := p.Len()
	for {
		if t.pc == n {
			return t.cursor == len(subject), nil
		}
		if err := quota.Check(); err != nil {
			return false, err
		}

		in := p.At(t.pc)
		switch in.Op {
		case bytecode.OpConsume:
			if !strings.HasPrefix(subject[t.cursor:], in.Text) {
				return false, nil
			}
			t.cursor += len(in.Text)
			t.pc++

		case bytecode.OpFork:
			target := t.pc + in.Offset
			if target < 0 || target > n {
				return false, newMalformedError(t.pc, t.cursor, n, in)
			}
			stack.push(thread{pc: target, cursor: t.cursor})
			m.stats.Forks++
			t.pc++

		case bytecode.OpJump:
			target := t.pc + in.Offset
			if target < 0 || target > n {
				return false, newMalformedError(t.pc, t.cursor, n, in)
			}
			t.pc = target

		case bytecode.OpFail:
			return false, nil

		default:
			return false, newMalformedError(t.pc, t.cursor, n, in)
		}
	}
}

func (m *Machine) trace(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Debug(msg, args...)
	}
}

// Run reports whether p accepts the whole of subject using a fresh Machine.
func Run(p *bytecode.Program, subject string, opts ...Option) (bool, error) {
	return New(opts...).Run(p, subject)
}

// Execute reports whether p accepts the whole of subject. Execute has no
// step budget and panics with a *RuntimeError if p is malformed; use Run
// for programs that did not come from the compiler.
func Execute(p *bytecode.Program, subject string) bool {
	ok, err := Run(p, subject)
	if err != nil {
		panic(err)
	}
	return ok
}
