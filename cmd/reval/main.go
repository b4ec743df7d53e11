package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "reval",
		Short: "Reactive value containers for Go",
		Long: `reval is a fine-grained reactive state library for Go.

Cells hold values, observers receive (new, old) deltas, and derived
cells project, filter, sort and merge other cells with bidirectional
write-back. This CLI carries supporting tooling:

  • version  build information
  • bench    propagation micro-benchmark`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		versionCmd(),
		benchCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}
