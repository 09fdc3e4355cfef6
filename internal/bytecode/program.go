package bytecode

import (
	"fmt"
	"strings"
)

// Program is an immutable, compiled instruction sequence.
//
// A Program is safe for concurrent use by any number of VM runs: nothing
// mutates it after New returns.
type Program struct {
	code []Instruction
}

// New creates a Program from instructions.
// The slice is copied to prevent external mutation.
func New(code []Instruction) *Program {
	p := &Program{}
	if len(code) > 0 {
		p.code = make([]Instruction, len(code))
		copy(p.code, code)
	}
	return p
}

// Len returns the number of instructions. Len() is also the accepting pc.
func (p *Program) Len() int {
	return len(p.code)
}

// At returns the instruction at pc. It panics if pc is out of range.
func (p *Program) At(pc int) Instruction {
	return p.code[pc]
}

// Instructions returns a copy of the instruction sequence.
func (p *Program) Instructions() []Instruction {
	out := make([]Instruction, len(p.code))
	copy(out, p.code)
	return out
}

// Target returns the absolute branch target of the instruction at pc.
// The boolean is false when the instruction is not a branch.
func (p *Program) Target(pc int) (int, bool) {
	in := p.code[pc]
	if !in.Op.IsBranch() {
		return 0, false
	}
	return pc + in.Offset, true
}

// Equal reports whether two programs contain identical instructions.
func (p *Program) Equal(q *Program) bool {
	if p.Len() != q.Len() {
		return false
	}
	for i := range p.code {
		if p.code[i] != q.code[i] {
			return false
		}
	}
	return true
}

// String returns a human-readable listing, one line per instruction:
//
//	0000  Fork    +3   ; -> 0003
//	0001  Consume "a"
//	0002  Jump    -2   ; -> 0000
func (p *Program) String() string {
	var sb strings.Builder
	for pc, in := range p.code {
		if target, ok := p.Target(pc); ok {
			fmt.Fprintf(&sb, "%04d  %-12s ; -> %04d\n", pc, in, target)
		} else {
			fmt.Fprintf(&sb, "%04d  %s\n", pc, in)
		}
	}
	return sb.String()
}
