// Command minrx compiles structural patterns to bytecode and runs them on a
// backtracking VM.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/minrx/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "minrx:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
