package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/minrx/internal/conformance"
	"github.com/roach88/minrx/internal/store"
)

// ErrCodeStillFailing marks a replay in which stored cases still disagree.
const ErrCodeStillFailing = "E_STILL_FAILING"

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	RunID string // optional - specific run only
}

// ReplayCaseResult holds the replay outcome of one stored case.
type ReplayCaseResult struct {
	ID          int64  `json:"id"`
	RunID       string `json:"run_id"`
	Fingerprint string `json:"fingerprint"`
	Pattern     string `json:"pattern"`
	Subject     string `json:"subject"`
	StoredVM    bool   `json:"stored_vm"`
	VM          bool   `json:"vm"`
	Oracle      bool   `json:"oracle"`
	Fixed       bool   `json:"fixed"`
	Error       string `json:"error,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Cases   []ReplayCaseResult `json:"cases"`
	Total   int                `json:"total"`
	Fixed   int                `json:"fixed"`
	Failing int                `json:"failing"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-check stored disagreements against the current VM",
		Long: `Re-run every case recorded by "minrx fuzz --db" through the current
compiler, VM and oracle, and report which cases now agree.

Exit codes:
  0 - Every stored case now agrees
  1 - At least one stored case still disagrees
  2 - Command error (database not found, unknown run, etc.)

Examples:
  minrx replay --db ./minrx.db
  minrx replay --db ./minrx.db --run 0190...
  minrx replay --db ./minrx.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay cases of a specific run only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, err := openExistingStore(opts.RootOptions)
	if err != nil {
		return formatter.Fail(ExitCommandError, loadErrorCode(err), err.Error(), nil)
	}
	defer st.Close()

	var cases []store.Case
	if opts.RunID != "" {
		if _, err := st.GetRun(ctx, opts.RunID); err != nil {
			if errors.Is(err, store.ErrRunNotFound) {
				return formatter.Fail(ExitCommandError, ErrCodeRunNotFound, fmt.Sprintf("run not found: %s", opts.RunID), nil)
			}
			return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
		}
		cases, err = st.CasesForRun(ctx, opts.RunID)
	} else {
		cases, err = st.Cases(ctx)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, fmt.Sprintf("reading cases: %v", err), nil)
	}
	formatter.VerboseLog("Replaying %d stored case(s)", len(cases))

	maxSteps := conformance.DefaultMaxSteps
	if opts.MaxSteps > 0 {
		maxSteps = opts.MaxSteps
	}
	checker := conformance.NewChecker(nil, conformance.WithMaxSteps(maxSteps))
	report, err := checker.Replay(ctx, cases)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("replay: %v", err), nil)
	}

	result := ReplayResult{
		Cases:   make([]ReplayCaseResult, 0, len(report.Results)),
		Total:   len(report.Results),
		Fixed:   report.Fixed,
		Failing: report.Failing,
	}
	for _, r := range report.Results {
		cr := ReplayCaseResult{
			ID:          r.Stored.ID,
			RunID:       r.Stored.RunID,
			Fingerprint: r.Stored.Fingerprint,
			Pattern:     r.Stored.Pattern.String(),
			Subject:     r.Stored.Subject,
			StoredVM:    r.Stored.VM,
			VM:          r.Now.VM,
			Oracle:      r.Now.Oracle,
			Fixed:       r.Fixed(),
		}
		if r.Now.Err != nil {
			cr.Error = r.Now.Err.Error()
		}
		result.Cases = append(result.Cases, cr)
	}

	var failure *CLIError
	if !report.OK() {
		failure = &CLIError{Code: ErrCodeStillFailing, Message: fmt.Sprintf("%d stored case(s) still disagree", report.Failing)}
	}

	if formatter.IsJSON() {
		if err := formatter.Result(result, failure); err != nil {
			return err
		}
	} else {
		outputReplayText(formatter, result)
	}

	if failure != nil {
		return NewExitError(ExitFailure, failure.Message)
	}
	return nil
}

// openExistingStore opens the --db store, refusing to create a new file.
func openExistingStore(opts *RootOptions) (*store.Store, error) {
	if opts.DB == "" {
		return nil, &LoadError{Code: ErrCodeNoDatabase, Message: "no database: pass --db or set db in " + DefaultConfigFile}
	}
	if _, err := os.Stat(opts.DB); os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("database not found: %s", opts.DB)}
	}
	st, err := store.Open(opts.DB)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeStoreFailed, Message: fmt.Sprintf("opening %s: %v", opts.DB, err)}
	}
	return st, nil
}

func outputReplayText(formatter *OutputFormatter, result ReplayResult) {
	w := formatter.Writer

	if result.Total == 0 {
		fmt.Fprintln(w, "No stored cases.")
		return
	}

	fmt.Fprintf(w, "Replay Summary: %d case(s)\n\n", result.Total)
	for _, c := range result.Cases {
		status := "✓"
		if !c.Fixed {
			status = "✗"
		}
		fmt.Fprintf(w, "%s #%d %s on %s: vm=%v oracle=%v (recorded vm=%v)\n",
			status, c.ID, c.Pattern, strconv.Quote(c.Subject), c.VM, c.Oracle, c.StoredVM)
		if c.Error != "" {
			fmt.Fprintf(w, "  %s\n", c.Error)
		}
	}
	fmt.Fprintf(w, "\n%d fixed, %d still failing\n", result.Fixed, result.Failing)
}
