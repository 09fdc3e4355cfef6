package vm

import (
	"errors"
	"fmt"
)

// stepQuota counts executed instructions and enforces an optional limit.
// A limit of zero or less means unlimited.
type stepQuota struct {
	limit   int
	current int
}

// Check increments the step counter and validates against the limit.
func (q *stepQuota) Check() error {
	q.current++
	if q.limit > 0 && q.current > q.limit {
		return &StepsExceededError{Steps: q.current, Limit: q.limit}
	}
	return nil
}

// StepsExceededError is returned when a run exceeds its step budget.
// The run is abandoned without a verdict.
type StepsExceededError struct {
	Steps int // Number of steps taken
	Limit int // Maximum allowed steps
}

// Error implements the error interface.
func (e *StepsExceededError) Error() string {
	return fmt.Sprintf("run exceeded max steps: %d steps > %d limit", e.Steps, e.Limit)
}

// IsStepsExceededError returns true if the error is a StepsExceededError.
// Uses errors.As to handle wrapped errors.
func IsStepsExceededError(err error) bool {
	var se *StepsExceededError
	return errors.As(err, &se)
}
