package bytecode

import (
	"errors"
	"fmt"
)

// ValidationError reports an instruction that would move pc outside
// [0, Len()], that has no known opcode, or that closes a loop which can
// repeat without consuming input.
//
// For programs produced by the compiler this indicates a compiler defect;
// for decoded programs it indicates corrupt or hostile bytecode.
type ValidationError struct {
	PC     int
	Op     Op
	Target int // absolute branch target, branches only
	Len    int

	// EmptyLoop is set when the edge PC -> Target closes a cycle that
	// passes through no non-empty Consume.
	EmptyLoop bool
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.EmptyLoop {
		return fmt.Sprintf("invalid instruction at pc %d: %s to %d loops without consuming input",
			e.PC, e.Op, e.Target)
	}
	if !e.Op.IsBranch() {
		return fmt.Sprintf("invalid instruction at pc %d: unknown opcode %s", e.PC, e.Op)
	}
	return fmt.Sprintf("invalid instruction at pc %d: %s target %d outside [0, %d]",
		e.PC, e.Op, e.Target, e.Len)
}

// Validate checks every instruction of p. Operands are checked first, in pc
// order; a program whose operands are all in range is then rejected if it
// can reach the same pc twice without consuming a byte.
func Validate(p *Program) error {
	n := p.Len()
	for pc, in := range p.code {
		switch in.Op {
		case OpConsume, OpFail:
			// no operand to check
		case OpFork, OpJump:
			target := pc + in.Offset
			if target < 0 || target > n {
				return &ValidationError{PC: pc, Op: in.Op, Target: target, Len: n}
			}
		default:
			return &ValidationError{PC: pc, Op: in.Op, Len: n}
		}
	}
	if ve := findEmptyLoop(p); ve != nil {
		return ve
	}
	return nil
}

// emptySuccessors returns the pcs reachable from pc without consuming input.
// Len() is included when control can fall off the end.
func (p *Program) emptySuccessors(pc int) []int {
	in := p.code[pc]
	switch in.Op {
	case OpConsume:
		if in.Text == "" {
			return []int{pc + 1}
		}
	case OpFork:
		return []int{pc + 1, pc + in.Offset}
	case OpJump:
		return []int{pc + in.Offset}
	}
	return nil
}

// findEmptyLoop runs an iterative depth-first search over the graph of
// non-consuming edges and reports the first back edge it meets.
func findEmptyLoop(p *Program) *ValidationError {
	const (
		unvisited = iota
		onPath
		done
	)
	type frame struct {
		pc   int
		next int
	}

	n := p.Len()
	state := make([]uint8, n)
	for start := range n {
		if state[start] != unvisited {
			continue
		}
		state[start] = onPath
		path := []frame{{pc: start}}
		for len(path) > 0 {
			top := &path[len(path)-1]
			succ := p.emptySuccessors(top.pc)
			if top.next == len(succ) {
				state[top.pc] = done
				path = path[:len(path)-1]
				continue
			}
			from, to := top.pc, succ[top.next]
			top.next++
			if to == n {
				continue
			}
			switch state[to] {
			case onPath:
				return &ValidationError{PC: from, Op: p.code[from].Op, Target: to, Len: n, EmptyLoop: true}
			case unvisited:
				state[to] = onPath
				path = append(path, frame{pc: to})
			}
		}
	}
	return nil
}

// IsValidationError returns true if err is a ValidationError.
// Uses errors.As to handle wrapped errors.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
