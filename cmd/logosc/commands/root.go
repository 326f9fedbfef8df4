// Package commands provides the CLI commands for the logosc backend
// compiler.
package commands

import (
	"github.com/spf13/cobra"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "logosc",
	Short: "logosc - LOGOS backend compiler",
	Long: `logosc compiles LOGOS compilation units (.lgb) to Rust source.

Commands:
  build      Compile a unit to Rust source
  header     Generate the C header for a unit's exported functions
  bindings   Generate Python or TypeScript bindings over the C ABI

Use "logosc [command] --help" for more information about a command.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.AddCommand(buildCmd)
	RootCmd.AddCommand(headerCmd)
	RootCmd.AddCommand(bindingsCmd)
}
