// Command ledgerkv manages a persistent ledger of obligations, escrow
// holds, coverage policies and claims.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/ledgerkv/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) || !exitErr.Reported {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
