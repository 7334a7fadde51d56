package main

import (
	"os"

	"github.com/cottand/boolex/cmd"
	"github.com/spf13/cobra"
)

func main() {
	err := newRootCmd().Execute()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "boolex [subcommand]",
		Short:        "boolex rewrites boolean expressions to simpler or normal forms",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
	}
	root.AddCommand(cmd.NewSimplifyCmd())
	root.AddCommand(cmd.NewDNFCmd())
	root.AddCommand(cmd.NewCNFCmd())
	root.AddCommand(cmd.NewConfigCmd())
	return root
}
