package cobra

import (
	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/curator/internal/commands"
)

func newExpiredCmd() *cobra.Command {
	var opts commands.ExpiredOpts

	cmd := &cobra.Command{
		Use:   "expired",
		Short: "List temporary keeps past their expiry",
		Long: `List temporary keeps past their expiry.
With --mark-decide-later they are moved back to decide_later so they show
up in scan again.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			opts.JSON = globalOpts.JSON
			opts.Quiet = globalOpts.Quiet
			return commands.Expired(cmd.Context(), env, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().BoolVar(&opts.MarkDecideLater, "mark-decide-later", false, "move expired keeps back to decide_later")
	addJSONFlag(cmd)

	return cmd
}
