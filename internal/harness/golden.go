package harness

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders a result as the text stored in golden files, with one
// line per case after the program listing.
func Snapshot(res *Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "scenario: %s\n", res.Scenario)
	fmt.Fprintf(&sb, "pattern: %s\n", res.Pattern)
	sb.WriteString("program:\n")
	sb.WriteString(res.Program.String())
	sb.WriteString("cases:\n")
	for _, o := range res.Outcomes {
		fmt.Fprintf(&sb, "  %-12s expect=%-5v vm=%-5v oracle=%-5v steps=%d\n",
			strconv.Quote(o.Subject), o.Expect, o.VM, o.Oracle, o.Steps)
	}
	return sb.String()
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, []byte(Snapshot(result)))

	return nil
}
