package cli

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/minrx/internal/bytecode"
	"github.com/roach88/minrx/internal/compiler"
	"github.com/roach88/minrx/internal/naive"
	"github.com/roach88/minrx/internal/pattern"
	"github.com/roach88/minrx/internal/vm"
)

// MatchOptions holds flags for the match command.
type MatchOptions struct {
	*RootOptions
	Program string // serialized program instead of a pattern file
	Oracle  bool   // cross-check against the naive matcher
	Stats   bool   // print machine statistics
}

// MatchVerdict is the outcome for one subject.
type MatchVerdict struct {
	Subject string    `json:"subject"`
	Matched bool      `json:"matched"`
	Oracle  *bool     `json:"oracle,omitempty"`
	Stats   *vm.Stats `json:"stats,omitempty"`
}

// Agrees reports whether the oracle verdict, if any, equals the VM's.
func (v MatchVerdict) Agrees() bool {
	return v.Oracle == nil || *v.Oracle == v.Matched
}

// MatchResult is the JSON payload of the match command.
type MatchResult struct {
	Pattern       string         `json:"pattern,omitempty"`
	Program       string         `json:"program,omitempty"`
	Verdicts      []MatchVerdict `json:"verdicts"`
	Matched       int            `json:"matched"`
	Rejected      int            `json:"rejected"`
	Disagreements int            `json:"disagreements"`
}

// NewMatchCommand creates the match command.
func NewMatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "match [pattern-file] <subject>...",
		Short: "Match subjects against a pattern",
		Long: `Compile a pattern and run each subject through the VM.

A subject matches only if the whole subject is consumed. With --program the
first argument is a subject, not a pattern file.

Exit codes:
  0 - Every subject matched (and agreed with the oracle)
  1 - A subject was rejected, or the VM and the oracle disagreed
  2 - Command error (unreadable pattern, malformed program, step limit)

Examples:
  minrx match pattern.yaml aab abc
  minrx match --oracle --stats pattern.cue ""
  minrx match --program star.mrxb aaaa`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Program, "program", "", "run a serialized program ("+bytecode.FileExtension+") instead of a pattern file")
	cmd.Flags().BoolVar(&opts.Oracle, "oracle", false, "cross-check every verdict against the naive matcher")
	cmd.Flags().BoolVar(&opts.Stats, "stats", false, "report machine statistics per subject")

	return cmd
}

func runMatch(opts *MatchOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	var (
		node     pattern.Node
		prog     *bytecode.Program
		subjects []string
		result   MatchResult
	)

	if opts.Program != "" {
		if opts.Oracle {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "--oracle needs a pattern file, not --program", nil)
		}
		p, err := LoadProgram(opts.Program)
		if err != nil {
			return formatter.Fail(ExitCommandError, loadErrorCode(err), err.Error(), nil)
		}
		prog = p
		subjects = args
		result.Program = opts.Program
	} else {
		if len(args) < 2 {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "match needs a pattern file and at least one subject", nil)
		}
		n, err := loadPatternNode(opts.RootOptions, args[0])
		if err != nil {
			return formatter.Fail(ExitCommandError, loadErrorCode(err), err.Error(), nil)
		}
		node = n
		prog = compiler.Compile(node)
		subjects = args[1:]
		result.Pattern = node.String()
	}
	formatter.VerboseLog("Program has %d instruction(s)", prog.Len())

	result.Verdicts = make([]MatchVerdict, 0, len(subjects))
	for _, subject := range subjects {
		if opts.Normalize {
			subject = norm.NFC.String(subject)
		}

		m := vm.New(machineOptions(opts.RootOptions)...)
		matched, err := m.Run(prog, subject)
		if err != nil {
			code := ErrCodeMalformedProgram
			if vm.IsStepsExceededError(err) {
				code = ErrCodeStepsExceeded
			}
			return formatter.Fail(ExitCommandError, code, fmt.Sprintf("subject %s: %v", strconv.Quote(subject), err), nil)
		}

		v := MatchVerdict{Subject: subject, Matched: matched}
		if opts.Oracle {
			want := naive.Match(node, subject)
			v.Oracle = &want
		}
		if opts.Stats {
			stats := m.Stats()
			v.Stats = &stats
		}

		if matched {
			result.Matched++
		} else {
			result.Rejected++
		}
		if !v.Agrees() {
			result.Disagreements++
		}
		result.Verdicts = append(result.Verdicts, v)
	}

	var failure *CLIError
	switch {
	case result.Disagreements > 0:
		failure = &CLIError{Code: ErrCodeDisagreement, Message: fmt.Sprintf("%d subject(s) disagree with the oracle", result.Disagreements)}
	case result.Rejected > 0:
		failure = &CLIError{Code: ErrCodeRejected, Message: fmt.Sprintf("%d subject(s) rejected", result.Rejected)}
	}

	if formatter.IsJSON() {
		if err := formatter.Result(result, failure); err != nil {
			return err
		}
	} else {
		outputMatchText(formatter, result)
	}

	if failure != nil {
		return NewExitError(ExitFailure, failure.Message)
	}
	return nil
}

// machineOptions builds VM options from the global flags. Instruction
// tracing is only wired in verbose mode.
func machineOptions(opts *RootOptions) []vm.Option {
	vmOpts := []vm.Option{vm.WithMaxSteps(opts.MaxSteps)}
	if opts.Verbose {
		vmOpts = append(vmOpts, vm.WithLogger(slog.Default()))
	}
	return vmOpts
}

func outputMatchText(formatter *OutputFormatter, result MatchResult) {
	w := formatter.Writer
	for _, v := range result.Verdicts {
		mark := "✓"
		verdict := "match"
		if !v.Matched {
			mark = "✗"
			verdict = "no match"
		}
		fmt.Fprintf(w, "%s %s: %s", mark, strconv.Quote(v.Subject), verdict)
		if v.Oracle != nil {
			if v.Agrees() {
				fmt.Fprint(w, " (oracle agrees)")
			} else {
				fmt.Fprintf(w, " (oracle DISAGREES: %v)", *v.Oracle)
			}
		}
		fmt.Fprintln(w)
		if v.Stats != nil {
			fmt.Fprintf(w, "  steps=%d forks=%d resumed=%d peak_stack=%d\n",
				v.Stats.Steps, v.Stats.Forks, v.Stats.Resumed, v.Stats.PeakStack)
		}
	}
	fmt.Fprintf(w, "\n%d matched, %d rejected\n", result.Matched, result.Rejected)
}
