package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var output string

	c := &cobra.Command{
		Use:   "export",
		Short: "Write the whole ledger as CSV",
		Long: `Write the ledger in its file format: a "date,category,amount,note"
header followed by one row per expense, oldest first.

Example:
  ledger export > backup.csv
  ledger export --backend sheets -o sheets-copy.csv`,
		Args: cobra.NoArgs,
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

			var out io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				out = f
			}
			if err := svc.Export(out, l); err != nil {
				return fmt.Errorf("failed to export ledger: %w", err)
			}
			if output != "" && output != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d records to %s\n", l.Len(), output)
			}
			return nil
		},
	}
	c.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return c
}
