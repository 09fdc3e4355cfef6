package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/minrx/internal/bytecode"
	"github.com/roach88/minrx/internal/compiler"
	"github.com/roach88/minrx/internal/pattern"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult is the JSON payload of the compile command.
type CompilationResult struct {
	Pattern      string            `json:"pattern"`
	Fingerprint  string            `json:"fingerprint"`
	Size         int               `json:"size"`     // pattern nodes
	Literals     []string          `json:"literals"` // literal texts in tree order
	Length       int               `json:"length"`
	Instructions []InstructionInfo `json:"instructions"`
	Output       string            `json:"output,omitempty"`
}

// InstructionInfo describes one instruction of a listing.
type InstructionInfo struct {
	Index  int     `json:"index"`
	Op     string  `json:"op"`
	Text   *string `json:"text,omitempty"`
	Offset *int    `json:"offset,omitempty"`
	Target *int    `json:"target,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <pattern-file>",
		Short: "Compile a pattern to bytecode",
		Long: `Compile a structural pattern document to a VM program.

The pattern file may be YAML, JSON or CUE (with a top-level pattern field).
The program listing is printed; with --output the program is also written
in the binary ` + bytecode.FileExtension + ` format accepted by "minrx match --program".`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the serialized program to this path")

	return cmd
}

func runCompile(opts *CompileOptions, patternFile string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	node, err := loadPatternNode(opts.RootOptions, patternFile)
	if err != nil {
		return formatter.Fail(ExitCommandError, loadErrorCode(err), err.Error(), nil)
	}
	formatter.VerboseLog("Loaded pattern %s from %s", node, patternFile)

	prog := compiler.Compile(node)
	fp, err := pattern.Fingerprint(node)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidPattern, err.Error(), nil)
	}

	if opts.Output != "" {
		if err := WriteProgram(opts.Output, prog); err != nil {
			return formatter.Fail(ExitCommandError, loadErrorCode(err), err.Error(), nil)
		}
		formatter.VerboseLog("Wrote %d instruction(s) to %s", prog.Len(), opts.Output)
	}

	result := CompilationResult{
		Pattern:      node.String(),
		Fingerprint:  fp,
		Size:         pattern.Size(node),
		Literals:     pattern.Literals(node),
		Length:       prog.Len(),
		Instructions: describeProgram(prog),
		Output:       opts.Output,
	}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %s (%d instruction(s))\n", result.Pattern, result.Length)
	fmt.Fprintf(w, "  fingerprint: %s\n", fp)
	fmt.Fprintf(w, "  size: %d node(s), literals: %q\n\n", result.Size, result.Literals)
	fmt.Fprint(w, prog.String())
	if opts.Output != "" {
		fmt.Fprintf(w, "\nWrote program to %s\n", opts.Output)
	}
	return nil
}

// loadPatternNode loads a pattern file, NFC-normalizing it when requested.
func loadPatternNode(opts *RootOptions, path string) (pattern.Node, error) {
	node, err := LoadPattern(path)
	if err != nil {
		return nil, err
	}
	if opts.Normalize {
		node = pattern.Normalize(node, norm.NFC)
	}
	return node, nil
}

// describeProgram converts a program into its JSON listing.
func describeProgram(p *bytecode.Program) []InstructionInfo {
	out := make([]InstructionInfo, p.Len())
	for pc, in := range p.Instructions() {
		info := InstructionInfo{Index: pc, Op: in.Op.String()}
		switch in.Op {
		case bytecode.OpConsume:
			text := in.Text
			info.Text = &text
		case bytecode.OpFork, bytecode.OpJump:
			offset := in.Offset
			info.Offset = &offset
			if target, ok := p.Target(pc); ok {
				info.Target = &target
			}
		}
		out[pc] = info
	}
	return out
}
