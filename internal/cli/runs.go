package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/minrx/internal/store"
)

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List conformance runs recorded in the store",
		Long: `List every run recorded by "minrx fuzz --db", oldest first.

Examples:
  minrx runs --db ./minrx.db
  minrx runs --db ./minrx.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(rootOpts, cmd)
		},
	}
	return cmd
}

func runRuns(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, err := openExistingStore(opts)
	if err != nil {
		return formatter.Fail(ExitCommandError, loadErrorCode(err), err.Error(), nil)
	}
	defer st.Close()

	runs, err := st.Runs(commandContext(cmd))
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, fmt.Sprintf("listing runs: %v", err), nil)
	}

	if formatter.IsJSON() {
		return formatter.Success(runs)
	}
	outputRunsText(formatter, runs)
	return nil
}

func outputRunsText(formatter *OutputFormatter, runs []store.Run) {
	w := formatter.Writer
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	for _, r := range runs {
		status := "finished"
		if !r.Finished {
			status = "unfinished"
		}
		fmt.Fprintf(w, "%3d  %s  seed=%d  checked=%d/%d  disagreements=%d  exhausted=%d  %s\n",
			r.Seq, r.ID, r.Seed, r.Checked, r.Requested, r.Disagreements, r.Exhausted, status)
	}
}
