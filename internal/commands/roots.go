package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/acctree/internal/importer"
	"github.com/cleared-dev/acctree/internal/store"
)

func newListRootsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list-root-accounts <company>",
		Short: "List a company's root accounts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListRoots(cmd, opts, args[0])
		},
	}
}

func runListRoots(cmd *cobra.Command, opts *globalOptions, company string) (err error) {
	sess, err := openSession(cmd.Context(), opts, "list-root-accounts")
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sess.close(err == nil); cerr != nil && err == nil {
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

	roots, err := sess.store.ListAccounts(cmd.Context(), store.AccountFilter{Company: company, Roots: true})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, r := range roots {
		fmt.Fprintf(out, "%s\t%s\t%s\n", r.Name, r.AccountName, r.RootType)
	}
	return nil
}
