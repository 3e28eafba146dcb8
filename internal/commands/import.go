package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/acctree/internal/auditlog"
	"github.com/cleared-dev/acctree/internal/importer"
	"github.com/cleared-dev/acctree/internal/metrics"
)

func newImportCommand(opts *globalOptions) *cobra.Command {
	var reset, skipRoot bool

	cmd := &cobra.Command{
		Use:   "import-chart-of-accounts <file>... <company>",
		Short: "Import a chart of accounts from CSV or XLSX files",
		Long: `Import accounts from one or more chart files into a company.

Files are processed in the order given and committed one at a time. A
directory argument imports every .csv and .xlsx file inside it. Rows are
imported top to bottom, so parents must appear before their children.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, company := args[:len(args)-1], args[len(args)-1]
			return runImport(cmd, opts, files, importer.Options{Company: company, Reset: reset, SkipRoot: skipRoot})
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "delete every non-root account of the company before importing")
	cmd.Flags().BoolVar(&skipRoot, "skip-root", false, "skip rows without a parent account")

	return cmd
}

func runImport(cmd *cobra.Command, opts *globalOptions, files []string, o importer.Options) (err error) {
	out := cmd.OutOrStdout()

	sess, err := openSession(cmd.Context(), opts, "import-chart-of-accounts")
	if err != nil {
		return err
	}
	ok := false
	defer func() {
		if cerr := sess.close(ok); cerr != nil && err == nil {
			err = cerr
		}
	}()

	heading(out, "Importing Chart of Accounts")

	res, err := importer.New(sess.store).ImportFiles(cmd.Context(), files, o)

	if res.Deleted > 0 {
		sess.record(auditlog.ActionReset, "", o.Company, fmt.Sprintf("deleted %d account(s)", res.Deleted))
	}
	for _, name := range res.Created {
		sess.record(auditlog.ActionImported, name, o.Company, "")
	}
	for _, e := range res.Errors {
		sess.record(auditlog.ActionImportFailed, e.Account, o.Company, e.Error())
		fmt.Fprintln(out, errStyle.Render(e.Error()))
	}
	sess.metrics.Add(metrics.OutcomeDeleted, res.Deleted)
	sess.metrics.Add(metrics.OutcomeImported, res.Imported)
	sess.metrics.Add(metrics.OutcomeSkipped, res.Skipped)
	sess.metrics.Add(metrics.OutcomeError, len(res.Errors))

	if errors.Is(err, importer.ErrCompanyNotFound) {
		fmt.Fprintln(out, errStyle.Render(fmt.Sprintf("Company %q does not exist.", o.Company)))
		return err
	}

	lines := [][2]string{
		{"Imported", fmt.Sprint(res.Imported)},
		{"Skipped", fmt.Sprint(res.Skipped)},
		{"Errors", fmt.Sprint(len(res.Errors))},
	}
	if o.Reset {
		lines = append([][2]string{{"Reset", fmt.Sprint(res.Deleted)}}, lines...)
	}
	summary(out, lines...)

	if err != nil {
		return err
	}
	if !res.OK() {
		return fmt.Errorf("import finished with %d error(s)", len(res.Errors))
	}
	ok = true
	return nil
}
