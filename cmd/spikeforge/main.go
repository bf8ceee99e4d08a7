// Command spikeforge assembles, simulates and records spiking circuits.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/spikeforge/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
