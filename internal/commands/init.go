package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/acctree/internal/auditlog"
	"github.com/cleared-dev/acctree/internal/chart"
	"github.com/cleared-dev/acctree/internal/config"
	"github.com/cleared-dev/acctree/internal/model"
	"github.com/cleared-dev/acctree/internal/store"
)

func newInitCommand(opts *globalOptions) *cobra.Command {
	var abbr string
	var noRoots bool

	cmd := &cobra.Command{
		Use:   "init <company>",
		Short: "Create a company with the standard root accounts",
		Long: `Create the database schema, a company and its five root group accounts.

acctree.yaml is written with default settings when it does not exist yet.
Running init again for an existing company changes nothing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, opts, model.Company{Name: args[0], Abbr: abbr}, !noRoots)
		},
	}

	cmd.Flags().StringVar(&abbr, "abbr", "", "company abbreviation appended to root account names (required)")
	_ = cmd.MarkFlagRequired("abbr")
	cmd.Flags().BoolVar(&noRoots, "no-roots", false, "create the company without root accounts")

	return cmd
}

func runInit(cmd *cobra.Command, opts *globalOptions, company model.Company, withRoots bool) (err error) {
	out := cmd.OutOrStdout()

	if _, statErr := os.Stat(opts.configPath); errors.Is(statErr, fs.ErrNotExist) {
		cfg := config.Default()
		if opts.driver != "" {
			cfg.Database.Driver = opts.driver
		}
		if opts.dsn != "" {
			cfg.Database.DSN = opts.dsn
		}
		if err := config.Save(opts.configPath, cfg); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s\n", opts.configPath)
	}

	sess, err := openSession(cmd.Context(), opts, "init")
	if err != nil {
		return err
	}
	ok := false
	defer func() {
		if cerr := sess.close(ok); cerr != nil && err == nil {
			err = cerr
		}
	}()

	ctx := cmd.Context()
	exists, err := sess.store.Exists(ctx, store.DocCompany, company.Name)
	if err != nil {
		return err
	}
	if !exists {
		if err := sess.store.CreateCompany(ctx, company); err != nil {
			return err
		}
	}

	created := 0
	if withRoots {
		for _, root := range chart.DefaultRoots(company.Name, company.Abbr) {
			found, err := sess.store.Exists(ctx, store.DocAccount, root.Name)
			if err != nil {
				return err
			}
			if found {
				continue
			}
			if err := sess.store.InsertAccount(ctx, &root); err != nil {
				return fmt.Errorf("creating root account %q: %w", root.Name, err)
			}
			sess.record(auditlog.ActionImported, root.Name, company.Name, "root account")
			created++
		}
	}

	if err := sess.store.Commit(); err != nil {
		return err
	}

	fmt.Fprintf(out, "Company %s ready (%d root account(s) created)\n", company.Name, created)
	ok = true
	return nil
}
