// Command predc compiles boolean document predicates into interval
// annotations for a posting-list index.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/predc/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "predc: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
