// Command vector calls auto-curried functions and clause tables and
// inspects the call log.
package main

import (
	"os"

	"github.com/roach88/vector/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
