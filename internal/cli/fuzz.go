package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/minrx/internal/conformance"
	"github.com/roach88/minrx/internal/store"
)

// FuzzOptions holds flags for the fuzz command.
type FuzzOptions struct {
	*RootOptions
	Seed     uint64
	Count    int
	Alphabet string
	MaxDepth int
}

// FuzzResult is the JSON payload of the fuzz command.
type FuzzResult struct {
	conformance.Summary
	Failures []FuzzFailure `json:"failures"`
	DB       string        `json:"db,omitempty"`
}

// FuzzFailure is one disagreeing case.
type FuzzFailure struct {
	Pattern string `json:"pattern"`
	Subject string `json:"subject"`
	VM      bool   `json:"vm"`
	Oracle  bool   `json:"oracle"`
}

// NewFuzzCommand creates the fuzz command.
func NewFuzzCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FuzzOptions{RootOptions: rootOpts}
	defaults := conformance.DefaultGeneratorConfig()

	cmd := &cobra.Command{
		Use:   "fuzz",
		Short: "Compare the VM with the oracle on random patterns",
		Long: `Generate random patterns and subjects from a seed and check that the
compiled VM and the naive oracle return the same verdict for every pair.

With --db the run and every disagreeing case are recorded in the
conformance store for later "minrx replay".

Exit codes:
  0 - No disagreement
  1 - At least one disagreement
  2 - Command error

Examples:
  minrx fuzz --seed 42 --count 10000
  minrx fuzz --count 500 --db ./minrx.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFuzz(opts, cmd)
		},
	}

	cmd.Flags().Uint64Var(&opts.Seed, "seed", 1, "generator seed")
	cmd.Flags().IntVar(&opts.Count, "count", 1000, "number of cases to check")
	cmd.Flags().StringVar(&opts.Alphabet, "alphabet", defaults.Alphabet, "characters used for literals and subjects")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", defaults.MaxDepth, "maximum pattern nesting depth")

	return cmd
}

func runFuzz(opts *FuzzOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if opts.Count < 0 {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "--count must not be negative", nil)
	}
	if opts.Alphabet == "" {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "--alphabet must not be empty", nil)
	}
	if opts.MaxDepth < 0 {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "--max-depth must not be negative", nil)
	}

	cfg := conformance.DefaultGeneratorConfig()
	cfg.Alphabet = opts.Alphabet
	cfg.MaxDepth = opts.MaxDepth

	maxSteps := conformance.DefaultMaxSteps
	if opts.MaxSteps > 0 {
		maxSteps = opts.MaxSteps
	}
	checkerOpts := []conformance.CheckerOption{conformance.WithMaxSteps(maxSteps)}

	if opts.DB != "" {
		st, err := store.Open(opts.DB)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, fmt.Sprintf("opening %s: %v", opts.DB, err), nil)
		}
		defer st.Close()
		checkerOpts = append(checkerOpts, conformance.WithRecorder(st))
		formatter.VerboseLog("Recording disagreements in %s", opts.DB)
	}

	checker := conformance.NewChecker(conformance.NewGenerator(opts.Seed, cfg), checkerOpts...)
	sum, err := checker.Run(commandContext(cmd), opts.Count)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("conformance run: %v", err), nil)
	}

	result := FuzzResult{Summary: sum, Failures: make([]FuzzFailure, 0, len(sum.Failures)), DB: opts.DB}
	for _, c := range sum.Failures {
		result.Failures = append(result.Failures, FuzzFailure{
			Pattern: c.Pattern.String(),
			Subject: c.Subject,
			VM:      c.VM,
			Oracle:  c.Oracle,
		})
	}

	var failure *CLIError
	if !sum.OK() {
		failure = &CLIError{Code: ErrCodeDisagreement, Message: fmt.Sprintf("%d disagreement(s)", sum.Disagreements)}
	}

	if formatter.IsJSON() {
		if err := formatter.Result(result, failure); err != nil {
			return err
		}
	} else {
		outputFuzzText(formatter, result)
	}

	if failure != nil {
		return NewExitError(ExitFailure, failure.Message)
	}
	return nil
}

func outputFuzzText(formatter *OutputFormatter, result FuzzResult) {
	w := formatter.Writer
	fmt.Fprintf(w, "Run %s (seed %d)\n", result.RunID, result.Seed)
	fmt.Fprintf(w, "  checked:       %d of %d\n", result.Checked, result.Requested)
	fmt.Fprintf(w, "  accepted:      %d\n", result.Accepted)
	fmt.Fprintf(w, "  exhausted:     %d\n", result.Exhausted)
	fmt.Fprintf(w, "  disagreements: %d\n", result.Disagreements)
	if result.DB != "" {
		fmt.Fprintf(w, "  recorded:      %d (%s)\n", result.Recorded, result.DB)
	}

	for _, f := range result.Failures {
		fmt.Fprintf(w, "✗ %s on %s: vm=%v oracle=%v\n", f.Pattern, strconv.Quote(f.Subject), f.VM, f.Oracle)
	}
	if len(result.Failures) == 0 {
		fmt.Fprintln(w, "✓ VM and oracle agree")
	}
}
