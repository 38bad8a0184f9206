package cobra

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/curator/internal/commands"
	"github.com/NielsdaWheelz/curator/internal/logging"
	"github.com/NielsdaWheelz/curator/internal/watch"
)

func newWatchCmd() *cobra.Command {
	var opts commands.WatchOpts

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Report files awaiting a decision as the directory changes",
		Long: `Report files awaiting a decision as the directory changes.
Changes are coalesced for --debounce before rescanning. Hidden files are
ignored. Stop with Ctrl-C.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			env.Logger = logging.Component(env.Logger, "watch")
			opts.Quiet = globalOpts.Quiet

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return commands.Watch(ctx, env, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().DurationVar(&opts.Debounce, "debounce", watch.DefaultDebounce, "quiet period before rescanning")
	addFilterFlags(cmd, &opts.Recursive, &opts.Include, &opts.Exclude)

	return cmd
}
