package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
)

func newBudgetCmd(opts *rootOptions) *cobra.Command {
	var daily, monthly, yearly, on string

	c := &cobra.Command{
		Use:   "budget",
		Short: "Compare spending with the daily, monthly and yearly budgets",
		Long: `Show spend against budget for the day, month and year containing
the reference date. Budgets come from BUDGET_FILE and the *_BUDGET variables;
the flags override them for this run only.

Example:
  ledger budget
  ledger budget --daily 800 --on 2024-01-15`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			today := core.DateOf(opts.now())
			if on != "" {
				d, err := core.ParseDate(on)
				if err != nil {
					return &core.ValidationError{Field: "date", Err: err}
				}
				today = d
			}

			svc, cfg, release, err := opts.openService(ctx, false)
			if err != nil {
				return err
			}
			defer release()

			b, err := overrideBudget(cfg.Budget, daily, monthly, yearly)
			if err != nil {
				return err
			}
			l, err := svc.Load(ctx)
			if err != nil {
				return fmt.Errorf("failed to load ledger: %w", err)
			}
			return writeBudget(cmd.OutOrStdout(), ledger.StatusOn(l, b, today))
		},
	}
	c.Flags().StringVar(&daily, "daily", "", "daily budget")
	c.Flags().StringVar(&monthly, "monthly", "", "monthly budget")
	c.Flags().StringVar(&yearly, "yearly", "", "yearly budget")
	c.Flags().StringVar(&on, "on", "", "reference date, YYYY-MM-DD (default today)")
	return c
}

func overrideBudget(base ledger.Budget, daily, monthly, yearly string) (ledger.Budget, error) {
	out := base
	for _, f := range []struct {
		name, raw string
		dst       *decimal.Decimal
	}{
		{"daily", daily, &out.Daily},
		{"monthly", monthly, &out.Monthly},
		{"yearly", yearly, &out.Yearly},
	} {
		raw := strings.TrimSpace(f.raw)
		if raw == "" {
			continue
		}
		if strings.HasPrefix(raw, "-") {
			return base, &core.ValidationError{Field: f.name + " budget", Err: ledger.ErrNegativeBudget}
		}
		d, err := core.ParseAmount(raw)
		if err != nil {
			return base, &core.ValidationError{Field: f.name + " budget", Err: err}
		}
		*f.dst = d
	}
	return out, nil
}

func writeBudget(out io.Writer, st ledger.BudgetStatus) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PERIOD\tSPENT\tBUDGET\tUSED\t")
	for _, p := range st.Periods() {
		flag := ""
		if p.Over() {
			flag = "over budget"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%3d%%\t%s\n",
			p.Label, core.FormatMoney(p.Spent), core.FormatMoney(p.Budget), int(p.Progress*100+0.5), flag)
	}
	return tw.Flush()
}
