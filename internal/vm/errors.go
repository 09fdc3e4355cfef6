package vm

import (
	"errors"
	"fmt"

	"github.com/roach88/minrx/internal/bytecode"
)

// RuntimeError reports a condition that aborted a run.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// PC is the program counter of the offending instruction.
	PC int

	// Cursor is the subject offset of the failing thread.
	Cursor int

	// Instruction is the offending instruction.
	Instruction bytecode.Instruction
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeMalformedProgram indicates a branch outside [0, len(program)]
	// or an unknown opcode.
	ErrCodeMalformedProgram RuntimeErrorCode = "MALFORMED_PROGRAM"

	// ErrCodeStepsExceeded indicates the run exceeded its step budget.
	ErrCodeStepsExceeded RuntimeErrorCode = "STEPS_EXCEEDED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: %s (pc=%d, cursor=%d)", e.Code, e.Message, e.PC, e.Cursor)
}

// IsMalformedProgram returns true if err reports a malformed program.
// Uses errors.As to handle wrapped errors.
func IsMalformedProgram(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeMalformedProgram
	}
	return false
}

// newMalformedError describes an instruction the machine cannot execute.
func newMalformedError(pc, cursor, n int, in bytecode.Instruction) *RuntimeError {
	msg := fmt.Sprintf("unknown opcode %s", in.Op)
	if in.Op.IsBranch() {
		msg = fmt.Sprintf("%s target %d outside [0, %d]", in.Op, pc+in.Offset, n)
	}
	return &RuntimeError{
		Code:        ErrCodeMalformedProgram,
		Message:     msg,
		PC:          pc,
		Cursor:      cursor,
		Instruction: in,
	}
}
