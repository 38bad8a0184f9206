package cobra

import (
	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/curator/internal/commands"
)

func newTrashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trash",
		Short: "Inspect or empty the trash",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newTrashListCmd(), newTrashEmptyCmd())

	return cmd
}

func newTrashListCmd() *cobra.Command {
	var opts commands.TrashListOpts

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List files in the trash",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			opts.JSON = globalOpts.JSON
			opts.Quiet = globalOpts.Quiet
			return commands.TrashList(cmd.Context(), env, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	addJSONFlag(cmd)

	return cmd
}

func newTrashEmptyCmd() *cobra.Command {
	var opts commands.TrashEmptyOpts

	cmd := &cobra.Command{
		Use:   "empty --yes",
		Short: "Permanently delete everything in the trash",
		Long: `Permanently delete everything in the trash.
This cannot be undone and requires --yes.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			opts.JSON = globalOpts.JSON
			opts.Quiet = globalOpts.Quiet
			return commands.TrashEmpty(cmd.Context(), env, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "confirm permanent deletion")
	addJSONFlag(cmd)

	return cmd
}
