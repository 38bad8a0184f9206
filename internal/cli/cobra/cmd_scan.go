package cobra

import (
	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/curator/internal/commands"
)

// addFilterFlags registers the path filter flags shared by scan, sort,
// rules, and watch.
func addFilterFlags(cmd *cobra.Command, recursive *bool, include, exclude *[]string) {
	cmd.Flags().BoolVarP(recursive, "recursive", "r", false, "descend into subdirectories")
	cmd.Flags().StringArrayVar(include, "include", nil, "only consider paths matching this glob (repeatable)")
	cmd.Flags().StringArrayVar(exclude, "exclude", nil, "skip paths matching this glob (repeatable)")
}

func newScanCmd() *cobra.Command {
	var opts commands.ScanOpts
	var limit int

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List files awaiting a decision",
		Long: `List files awaiting a decision.
A file awaits a decision when it has no record, or its status is
decide_later. Temporary keeps whose expiry has passed are included with
--include-expired.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("limit") {
				opts.Limit = &limit
			}
			opts.JSON = globalOpts.JSON
			opts.Quiet = globalOpts.Quiet
			return commands.Scan(cmd.Context(), env, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.FilterTerm, "filter", "", "case-insensitive substring of the path or a tag")
	cmd.Flags().StringVar(&opts.SortBy, "sort-by", "", "name, date, or size (default from config)")
	cmd.Flags().StringVar(&opts.SortOrder, "sort-order", "", "asc or desc (default from config)")
	cmd.Flags().BoolVar(&opts.IncludeExpired, "include-expired", false, "include expired temporary keeps")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of files to list")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "skip this many files first")
	cmd.Flags().BoolVarP(&opts.Long, "long", "l", false, "show size, modification time, and tags")
	addFilterFlags(cmd, &opts.Recursive, &opts.Include, &opts.Exclude)
	addJSONFlag(cmd)

	return cmd
}

func newSortCmd() *cobra.Command {
	var opts commands.ScanOpts

	cmd := &cobra.Command{
		Use:       "sort <name|date|size>",
		Short:     "List files awaiting a decision in a given order",
		Args:      exactArgs(1, "a sort key (name, date, or size)"),
		ValidArgs: []string{"name", "date", "size"},
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			opts.SortBy = args[0]
			opts.JSON = globalOpts.JSON
			opts.Quiet = globalOpts.Quiet
			return commands.Sort(cmd.Context(), env, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.SortOrder, "order", "", "asc or desc (default from config)")
	cmd.Flags().BoolVarP(&opts.Long, "long", "l", false, "show size, modification time, and tags")
	addFilterFlags(cmd, &opts.Recursive, &opts.Include, &opts.Exclude)
	addJSONFlag(cmd)

	return cmd
}
