// Package cmd implements the viewkit CLI commands.
//
// The command structure follows a root command that dispatches to
// subcommands (render, audit). Subcommands register themselves from init.
package cmd

import (
	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

var commands []func() *cobra.Command

// RegisterCommand adds a subcommand constructor to the CLI.
func RegisterCommand(fn func() *cobra.Command) {
	commands = append(commands, fn)
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "viewkit",
		Short: "viewkit - view lifecycle toolkit",
		Long: `viewkit renders bubble legends from yaml models and audits the
view trees they produce for untracked views.

Use "viewkit <command> --help" for more information about a command.`,
		Version:       Version + " (built " + BuildTime + ")",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().String("config", "", "path to viewkit.yaml (default: ./viewkit.yaml when present)")
	for _, fn := range commands {
		root.AddCommand(fn())
	}
	return root
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}
