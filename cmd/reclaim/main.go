// Command reclaim runs a dead-page scan from the terminal.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "reclaim",
		Short:         "Find dead pages that still attract backlinks",
		SilenceUsage: true,
	}
	root.AddCommand(NewScanCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
