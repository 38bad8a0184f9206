package cobra

import (
	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/curator/internal/commands"
)

func newTagCmd() *cobra.Command {
	var opts commands.TagOpts

	cmd := &cobra.Command{
		Use:   "tag <file>",
		Short: "Add or remove tags on a file",
		Long: `Add or remove tags on a file.
Tags are added first, then removed. With neither flag the current tags
are printed.`,
		Args: exactArgs(1, "a file"),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			opts.File = args[0]
			opts.JSON = globalOpts.JSON
			opts.Quiet = globalOpts.Quiet
			return commands.Tag(cmd.Context(), env, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringSliceVar(&opts.Add, "add", nil, "tags to add")
	cmd.Flags().StringSliceVar(&opts.Remove, "remove", nil, "tags to remove")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "tag the path even if the file does not exist")
	addJSONFlag(cmd)

	return cmd
}

func newTagBatchCmd() *cobra.Command {
	var opts commands.TagBatchOpts

	cmd := &cobra.Command{
		Use:   "tag-batch [--files a,b] [--from-file F] [--stdin]",
		Short: "Add or remove the same tags on many files",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			opts.JSON = globalOpts.JSON
			opts.Quiet = globalOpts.Quiet
			return commands.TagBatch(cmd.Context(), env, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	addBatchFlags(cmd, &opts.Batch)
	cmd.Flags().StringSliceVar(&opts.Add, "add", nil, "tags to add")
	cmd.Flags().StringSliceVar(&opts.Remove, "remove", nil, "tags to remove")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "tag paths even if the file does not exist")
	addJSONFlag(cmd)

	return cmd
}
