package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/acctree/internal/chart"
	"github.com/cleared-dev/acctree/internal/importer"
	"github.com/cleared-dev/acctree/internal/metrics"
	"github.com/cleared-dev/acctree/internal/store"
)

func newExportCommand(opts *globalOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export-chart-of-accounts <company>",
		Short: "Write a company's chart of accounts as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts, args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func runExport(cmd *cobra.Command, opts *globalOptions, company, output string) (err error) {
	sess, err := openSession(cmd.Context(), opts, "export-chart-of-accounts")
	if err != nil {
		return err
	}
	ok := false
	defer func() {
		if cerr := sess.close(ok); cerr != nil && err == nil {
			err = cerr
		}
	}()

	exists, err := sess.store.Exists(cmd.Context(), store.DocCompany, company)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %q", importer.ErrCompanyNotFound, company)
	}

	accounts, err := sess.store.ListAccounts(cmd.Context(), store.AccountFilter{Company: company})
	if err != nil {
		return err
	}
	rows := make([]chart.Row, len(accounts))
	for i, a := range accounts {
		rows[i] = chart.FromAccount(a)
	}
	rows = chart.SortHierarchy(rows)

	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating %s: %w", output, err)
		}
		defer f.Close()
		w = f
	}

	if err := chart.WriteRows(w, rows); err != nil {
		return fmt.Errorf("writing chart: %w", err)
	}
	if output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d account(s) to %s\n", len(rows), output)
	}
	sess.metrics.Add(metrics.OutcomeExported, len(rows))
	ok = true
	return nil
}
