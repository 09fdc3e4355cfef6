package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// evaluateAssertion checks one assertion against a finished result.
func evaluateAssertion(res *Result, a Assertion) error {
	switch a.Type {
	case AssertProgramLength:
		if got := res.Program.Len(); got != a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%d instructions", a.Count),
				Actual:   fmt.Sprintf("%d instructions", got),
			}
		}

	case AssertInstructionCount:
		got := 0
		for _, in := range res.Program.Instructions() {
			if in.Op.String() == a.Op {
				got++
			}
		}
		if got != a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%d %s instructions", a.Count, a.Op),
				Actual:   fmt.Sprintf("%d %s instructions", got, a.Op),
			}
		}

	case AssertMaxSteps:
		for _, o := range res.Outcomes {
			if o.Steps > a.Count {
				return &AssertionError{
					Type:     a.Type,
					Expected: fmt.Sprintf("at most %d steps per case", a.Count),
					Actual:   fmt.Sprintf("%d steps for subject %q", o.Steps, o.Subject),
				}
			}
		}

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
