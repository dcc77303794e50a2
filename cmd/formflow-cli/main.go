// Command formflow-cli fills a remote form from the terminal.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "formflow-cli",
		Short:        "Fill multi-step forms served by the form service",
		SilenceUsage: true,
	}
	root.AddCommand(newFillCmd())
	return root
}
