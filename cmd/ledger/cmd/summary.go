package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
)

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	var monthly bool

	c := &cobra.Command{
		Use:   "summary",
		Short: "Show total spent and totals per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, _, release, err := opts.openService(ctx, false)
			if err != nil {
				return err
			}
			defer release()

			l, err := svc.Load(ctx)
			if err != nil {
				return fmt.Errorf("failed to load ledger: %w", err)
			}
			return writeSummary(cmd.OutOrStdout(), l, monthly)
		},
	}
	c.Flags().BoolVar(&monthly, "monthly", false, "also list totals per month")
	return c
}

func writeSummary(out io.Writer, l ledger.Ledger, monthly bool) error {
	if l.IsEmpty() {
		_, err := fmt.Fprintln(out, "No expenses yet.")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Total spent:\t%s\t\n", core.FormatMoney(ledger.TotalSpent(l)))
	fmt.Fprintf(tw, "Records:\t%d\t\n", l.Len())
	fmt.Fprintln(tw, "\t\t")
	for _, c := range ledger.TotalsByCategory(l) {
		fmt.Fprintf(tw, "%s\t%s\t\n", c.Category, core.FormatMoney(c.Amount))
	}
	if monthly {
		fmt.Fprintln(tw, "\t\t")
		for _, m := range ledger.TotalsByMonth(l) {
			fmt.Fprintf(tw, "%s\t%s\t\n", m.Month, core.FormatMoney(m.Amount))
		}
	}
	return tw.Flush()
}
