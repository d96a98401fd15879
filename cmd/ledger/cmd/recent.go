package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
)

func newRecentCmd(opts *rootOptions) *cobra.Command {
	var limit int

	c := &cobra.Command{
		Use:   "recent",
		Short: "List the most recent expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cfg, release, err := opts.openService(ctx, false)
			if err != nil {
				return err
			}
			defer release()

			l, err := svc.Load(ctx)
			if err != nil {
				return fmt.Errorf("failed to load ledger: %w", err)
			}
			if limit < 1 {
				limit = cfg.RecentLimit
			}
			return writeRecent(cmd.OutOrStdout(), l, limit)
		},
	}
	c.Flags().IntVarP(&limit, "limit", "l", 0, "number of records (default RECENT_LIMIT)")
	return c
}

func writeRecent(out io.Writer, l ledger.Ledger, limit int) error {
	if l.IsEmpty() {
		_, err := fmt.Fprintln(out, "No expenses yet.")
		return err
	}
	tail := l.Tail(limit)
	first := l.Len() - len(tail)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tDATE\tCATEGORY\tAMOUNT\tNOTE")
	for i, e := range tail {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", first+i, e.Date, e.Category, core.FormatMoney(e.Amount), e.Note)
	}
	return tw.Flush()
}
