package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"expensetracker/internal/core"
)

func newAddCmd(opts *rootOptions) *cobra.Command {
	var date, category, amount, note string

	c := &cobra.Command{
		Use:   "add",
		Short: "Record an expense",
		Long: `Record one expense and save the ledger.

Categories: ` + categoryList() + `
The date defaults to today; amounts accept "12.50" or "12,50".

Example:
  ledger add --category Travel --amount 250 --note "airport taxi"
  ledger add --date 2024-01-15 --category Food --amount 12,50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			d := core.DateOf(opts.now())
			if date != "" {
				parsed, err := core.ParseDate(date)
				if err != nil {
					return &core.ValidationError{Field: "date", Err: err}
				}
				d = parsed
			}
			e, err := core.NewExpense(d, category, amount, note)
			if err != nil {
				return err
			}

			svc, _, release, err := opts.openService(ctx, true)
			if err != nil {
				return err
			}
			defer release()

			l, err := svc.Load(ctx)
			if err != nil {
				return fmt.Errorf("failed to load ledger: %w", err)
			}
			l, err = svc.Append(ctx, l, e)
			if err != nil {
				return fmt.Errorf("failed to record expense: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Recorded #%d: %s %s %s", l.Len()-1, e.Date, e.Category, core.FormatMoney(e.Amount))
			if e.Note != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " (%s)", e.Note)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}

	c.Flags().StringVar(&date, "date", "", "expense date, YYYY-MM-DD (default today)")
	c.Flags().StringVarP(&category, "category", "c", "", "expense category")
	c.Flags().StringVarP(&amount, "amount", "a", "", "amount spent")
	c.Flags().StringVarP(&note, "note", "n", "", "optional note")
	_ = c.MarkFlagRequired("category")
	_ = c.MarkFlagRequired("amount")
	return c
}

func categoryList() string {
	names := make([]string, 0, len(core.Categories()))
	for _, c := range core.Categories() {
		names = append(names, c.String())
	}
	return strings.Join(names, ", ")
}
