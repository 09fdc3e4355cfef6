package vm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/minrx/internal/bytecode"
)

func TestIsMalformedProgram(t *testing.T) {
	malformed := newMalformedError(0, 0, 1, bytecode.Fork(9))

	assert.True(t, IsMalformedProgram(malformed))
	assert.True(t, IsMalformedProgram(fmt.Errorf("matching: %w", malformed)))
	assert.False(t, IsMalformedProgram(errors.New("other")))
	assert.False(t, IsMalformedProgram(&RuntimeError{Code: ErrCodeStepsExceeded}))
	assert.False(t, IsMalformedProgram(nil))
}

func TestNewMalformedError_Messages(t *testing.T) {
	assert.Equal(t, "Fork target 9 outside [0, 1]", newMalformedError(0, 0, 1, bytecode.Fork(9)).Message)
	assert.Equal(t, "unknown opcode Op(7)", newMalformedError(0, 0, 1, bytecode.Instruction{Op: 7}).Message)
}
