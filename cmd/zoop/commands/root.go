// Package commands provides the CLI commands for the zoop tool.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "zoop",
	Short: "Class and mixin source generator for Zig",
	Long: `zoop reads .zoop source units containing class and mixin declarations
and generates fully expanded Zig structs: every inherited field and method
is physically copied into the descendant, with self-type references
rewritten to the descendant's own name.

Usage:
  zoop generate [dir]     Generate .zig output for a project
  zoop check [dir]        Validate a project without writing output
  zoop version            Print version`,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return fmt.Errorf("unknown command %q for \"zoop\"\nRun 'zoop --help' for usage", args[0])
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
}
