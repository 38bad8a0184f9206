package cobra

import (
	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/curator/internal/commands"
)

func newRenameCmd() *cobra.Command {
	var opts commands.RenameOpts

	cmd := &cobra.Command{
		Use:   "rename <file> <new-name>",
		Short: "Rename a file in place",
		Long: `Rename a file in place, keeping it in the same directory.
The new name must be a bare file name. Its record moves with it and its
status becomes renamed. Undo with 'curator undo'.`,
		Args: exactArgs(2, "a file and a new name"),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			opts.Old, opts.New = args[0], args[1]
			opts.JSON = globalOpts.JSON
			opts.Quiet = globalOpts.Quiet
			return commands.Rename(cmd.Context(), env, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	addJSONFlag(cmd)

	return cmd
}

func newDeleteCmd() *cobra.Command {
	var opts commands.DeleteOpts

	cmd := &cobra.Command{
		Use:   "delete <file>",
		Short: "Move a file to the trash",
		Long: `Move a file to the repository trash (.curator_trash).
On an interactive terminal you are asked to confirm unless --yes is given.
Restore with 'curator restore' or 'curator undo'.`,
		Args: exactArgs(1, "a file"),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			opts.File = args[0]
			opts.JSON = globalOpts.JSON
			opts.Quiet = globalOpts.Quiet
			return commands.Delete(cmd.Context(), env, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "do not ask for confirmation")
	addJSONFlag(cmd)

	return cmd
}

func newRestoreCmd() *cobra.Command {
	var opts commands.RestoreOpts

	cmd := &cobra.Command{
		Use:   "restore <trash-name>",
		Short: "Move a file out of the trash",
		Long: `Move a file out of the trash and back into review.
The file returns to where it was deleted from when that is known, otherwise
to the repository root. --to overrides the destination.`,
		Args: exactArgs(1, "a trash file name"),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			opts.File = args[0]
			opts.JSON = globalOpts.JSON
			opts.Quiet = globalOpts.Quiet
			return commands.Restore(cmd.Context(), env, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.To, "to", "", "repository-relative destination path")
	addJSONFlag(cmd)

	return cmd
}

func newUndoCmd() *cobra.Command {
	var opts commands.UndoOpts

	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Reverse the last rename or delete",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			opts.JSON = globalOpts.JSON
			opts.Quiet = globalOpts.Quiet
			return commands.Undo(cmd.Context(), env, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	addJSONFlag(cmd)

	return cmd
}
