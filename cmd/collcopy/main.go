// Command collcopy copies EMCal cells, clusters or tracks of stored events
// into new, separately named collections.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/collcopy/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
