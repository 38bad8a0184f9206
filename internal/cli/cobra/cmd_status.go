package cobra

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/curator/internal/commands"
	"github.com/NielsdaWheelz/curator/internal/core"
	"github.com/NielsdaWheelz/curator/internal/errors"
)

var statusHelp = "one of: " + strings.Join(core.AllowedUserInputs(), ", ")

// addBatchFlags registers the file name sources shared by the batch commands.
func addBatchFlags(cmd *cobra.Command, opts *commands.BatchOpts) {
	cmd.Flags().StringSliceVar(&opts.Files, "files", nil, "file names (comma separated or repeated)")
	cmd.Flags().StringVar(&opts.FromFile, "from-file", "", "read file names from this file, one per line")
	cmd.Flags().BoolVar(&opts.Stdin, "stdin", false, "read file names from stdin, one per line")
}

func newStatusCmd() *cobra.Command {
	var opts commands.StatusOpts

	cmd := &cobra.Command{
		Use:   "status <file> <status>",
		Short: "Record a decision for a file",
		Long: `Record a decision for a file.
Status is ` + statusHelp + `.
keep is temporary and needs --days; keep_90_days is shorthand for
keep --days 90.`,
		Args:      exactArgs(2, "a file and a status"),
		ValidArgs: core.AllowedUserInputs(),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			opts.File, opts.Status = args[0], args[1]
			opts.JSON = globalOpts.JSON
			opts.Quiet = globalOpts.Quiet
			return commands.Status(cmd.Context(), env, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().IntVar(&opts.Days, "days", 0, "keep duration in days (required for keep)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "record the status even if the file does not exist")
	addJSONFlag(cmd)

	return cmd
}

func newStatusBatchCmd() *cobra.Command {
	var opts commands.StatusBatchOpts

	cmd := &cobra.Command{
		Use:   "status-batch --status <status> [--files a,b] [--from-file F] [--stdin]",
		Short: "Record the same decision for many files",
		Long: `Record the same decision for many files.
Every file is attempted; the command exits 2 if any of them failed.
Status is ` + statusHelp + `.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Status == "" {
				return errors.New(errors.EUsage, "--status is required")
			}
			env, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			opts.JSON = globalOpts.JSON
			opts.Quiet = globalOpts.Quiet
			return commands.StatusBatch(cmd.Context(), env, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	addBatchFlags(cmd, &opts.Batch)
	cmd.Flags().StringVar(&opts.Status, "status", "", "status to record")
	cmd.Flags().IntVar(&opts.Days, "days", 0, "keep duration in days (required for keep)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "record the status even if a file does not exist")
	addJSONFlag(cmd)

	return cmd
}
