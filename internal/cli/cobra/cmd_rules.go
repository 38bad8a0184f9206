package cobra

import (
	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/curator/internal/commands"
)

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Evaluate or apply rules to files awaiting a decision",
		Long: `Evaluate or apply rules to files awaiting a decision.
Rules are read from --rules-file, the config rules_file, or
curator_rules.json in the repository. The first matching rule wins.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(
		newRulesRunCmd("dry-run", "Show which rules would match", false),
		newRulesRunCmd("apply", "Apply matching rules", true),
	)

	return cmd
}

func newRulesRunCmd(use, short string, apply bool) *cobra.Command {
	var opts commands.RulesOpts

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			opts.Apply = apply
			opts.JSON = globalOpts.JSON
			opts.Quiet = globalOpts.Quiet
			return commands.RulesRun(cmd.Context(), env, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.RulesFile, "rules-file", "", "rules file (JSON list of rules)")
	addFilterFlags(cmd, &opts.Recursive, &opts.Include, &opts.Exclude)
	addJSONFlag(cmd)

	return cmd
}
