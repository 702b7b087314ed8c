package commands

import (
	"github.com/spf13/cobra"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "ggq",
	Short: "go-guard-query - Platform guard analysis for call sites",
	Long: `go-guard-query answers one question about a call site: which platform
check is guaranteed to have passed when control reaches it?

Commands:
  guard       Report the guard guaranteed at a call site
  cfg         Extract the control flow graph for a function
  sites       List call sites of a function across a project
  init        Initialize ggq configuration interactively

Use "ggq [command] --help" for more information about a command.`,
}

// Execute runs the root command.
func Execute() error {
	return RootCmd.Execute()
}
