// Package cobra provides the Cobra-based CLI command tree for curator.
package cobra

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/curator/internal/errors"
	"github.com/NielsdaWheelz/curator/internal/version"
)

// GlobalOpts holds global options parsed before subcommand dispatch.
type GlobalOpts struct {
	Repo    string
	Config  string
	Quiet   bool
	Verbose bool

	// JSON is set by the --json flag of whichever subcommand ran, so main
	// can report errors in the same format.
	JSON bool
}

// globalOpts stores the parsed global options for access by subcommands.
var globalOpts GlobalOpts

// GetGlobalOpts returns the parsed global options.
func GetGlobalOpts() GlobalOpts {
	return globalOpts
}

// NewRootCmd creates the root cobra command for curator.
func NewRootCmd() *cobra.Command {
	globalOpts = GlobalOpts{}

	rootCmd := &cobra.Command{
		Use:   "curator",
		Short: "Triage the files in a directory",
		Long: `curator - triage the files in a directory

Curator lists the files in a directory that still need a decision, records
keep/delete/decide-later choices and tags in a hidden state file, moves
deleted files to a recoverable trash, and applies rules to batches of files.`,
		Version:       version.FullVersion(),
		SilenceErrors: true, // main prints errors
		SilenceUsage:  true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&globalOpts.Repo, "repo", ".", "directory to curate")
	pf.StringVar(&globalOpts.Config, "config", "", "config file (default $XDG_CONFIG_HOME/curator/config.yaml)")
	pf.BoolVarP(&globalOpts.Quiet, "quiet", "q", false, "suppress normal output")
	pf.BoolVar(&globalOpts.Verbose, "verbose", false, "debug logging and detailed error context")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.Wrap(errors.EUsage, err.Error(), err)
	})
	rootCmd.SetVersionTemplate("curator {{.Version}}\n")

	// Disable Cobra's default completion command (we register our own)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(
		newScanCmd(),
		newSortCmd(),
		newStatusCmd(),
		newStatusBatchCmd(),
		newTagCmd(),
		newTagBatchCmd(),
		newRenameCmd(),
		newDeleteCmd(),
		newRestoreCmd(),
		newUndoCmd(),
		newExpiredCmd(),
		newTrashCmd(),
		newRulesCmd(),
		newWatchCmd(),
		newCompletionCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// Execute runs the root command with the given output writers.
// This is the main entry point from main.go.
func Execute(stdout, stderr io.Writer) error {
	rootCmd := NewRootCmd()
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd.Execute()
}

// addJSONFlag registers --json on cmd, bound to the global JSON option.
func addJSONFlag(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&globalOpts.JSON, "json", false, "output as JSON (stable format)")
}

// exactArgs is cobra.ExactArgs reporting E_USAGE.
func exactArgs(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return errors.NewWithDetails(errors.EUsage,
				fmt.Sprintf("%s requires %s", cmd.CommandPath(), usage),
				map[string]string{"hint": "run '" + cmd.CommandPath() + " --help'"})
		}
		return nil
	}
}

// noArgs is cobra.NoArgs reporting E_USAGE.
func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return errors.New(errors.EUsage,
			fmt.Sprintf("unexpected argument %q for %s", args[0], cmd.CommandPath()))
	}
	return nil
}
