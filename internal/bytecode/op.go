package bytecode

import (
	"fmt"
	"strconv"
)

// Op identifies an instruction kind.
type Op uint8

const (
	// OpConsume matches Text at the cursor and advances past it.
	OpConsume Op = iota + 1
	// OpFork pushes an alternative execution state at pc+Offset.
	OpFork
	// OpJump sets pc to pc+Offset.
	OpJump
	// OpFail terminates the current execution state.
	OpFail
)

var opNames = map[Op]string{
	OpConsume: "Consume",
	OpFork:    "Fork",
	OpJump:    "Jump",
	OpFail:    "Fail",
}

// String returns the mnemonic for the op.
func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", uint8(op))
}

// IsBranch reports whether the op carries a relative offset.
func (op Op) IsBranch() bool {
	return op == OpFork || op == OpJump
}

// Instruction is a single decoded instruction.
type Instruction struct {
	Op     Op
	Text   string // OpConsume only
	Offset int    // OpFork and OpJump only, relative to this instruction
}

// Consume creates a Consume instruction.
func Consume(text string) Instruction {
	return Instruction{Op: OpConsume, Text: text}
}

// Fork creates a Fork instruction with a relative offset.
func Fork(offset int) Instruction {
	return Instruction{Op: OpFork, Offset: offset}
}

// Jump creates a Jump instruction with a relative offset.
func Jump(offset int) Instruction {
	return Instruction{Op: OpJump, Offset: offset}
}

// Fail creates a Fail instruction.
func Fail() Instruction {
	return Instruction{Op: OpFail}
}

// String formats the instruction as "<op> <operand>", e.g. `Fork +3`.
func (in Instruction) String() string {
	switch in.Op {
	case OpConsume:
		return fmt.Sprintf("%-7s %s", in.Op, strconv.Quote(in.Text))
	case OpFork, OpJump:
		return fmt.Sprintf("%-7s %+d", in.Op, in.Offset)
	default:
		return in.Op.String()
	}
}
