package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/acctree/internal/auditlog"
	"github.com/cleared-dev/acctree/internal/metrics"
	"github.com/cleared-dev/acctree/internal/pruner"
)

func newDeleteAccountCommand(opts *globalOptions) *cobra.Command {
	var dryRun, force, interactive bool

	cmd := &cobra.Command{
		Use:   "delete-account <account> <company>",
		Short: "Delete an account and everything below it",
		Long: `Delete an account together with all of its descendant accounts,
children first.

Accounts referenced by GL entries, journal entry lines or payment entries
stop the run unless --force or --interactive is given. --dry-run prints the
plan and changes nothing.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy := pruner.PolicyAbort
			switch {
			case force:
				policy = pruner.PolicyForce
			case interactive:
				policy = pruner.PolicyPromptConfirm
			}
			req := pruner.Request{Account: args[0], Company: args[1], DryRun: dryRun, Policy: policy}
			return runDeleteAccount(cmd, opts, req)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be deleted without deleting")
	cmd.Flags().BoolVar(&force, "force", false, "delete accounts even if they have ledger activity")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "ask before deleting accounts with ledger activity")
	cmd.MarkFlagsMutuallyExclusive("force", "interactive")

	return cmd
}

func runDeleteAccount(cmd *cobra.Command, opts *globalOptions, req pruner.Request) (err error) {
	out := cmd.OutOrStdout()

	sess, err := openSession(cmd.Context(), opts, "delete-account")
	if err != nil {
		return err
	}
	ok := false
	defer func() {
		if cerr := sess.close(ok); cerr != nil && err == nil {
			err = cerr
		}
	}()

	title := "Delete account: " + req.Account
	if req.DryRun {
		title += " (dry run)"
	}
	heading(out, title)

	p := pruner.New(sess.store, newConfirmer(cmd.InOrStdin(), out))
	res, err := p.Run(cmd.Context(), req)
	if err != nil {
		var blocked *pruner.BlockedError
		if errors.As(err, &blocked) {
			sess.metrics.Add(metrics.OutcomeBlocked, len(blocked.Accounts))
			printActivity(out, blocked.Accounts)
			fmt.Fprintln(out, errStyle.Render("Aborted: use --force or --interactive to delete accounts with ledger activity."))
		}
		if errors.Is(err, pruner.ErrDeclined) {
			fmt.Fprintln(out, warnStyle.Render("Cancelled."))
		}
		if res == nil {
			return err
		}
	}

	printPlan(out, res)
	if len(res.Blocked) > 0 {
		sess.metrics.Add(metrics.OutcomeBlocked, len(res.Blocked))
		printActivity(out, res.Blocked)
	}

	if res.DryRun {
		summary(out,
			[2]string{"Accounts to delete", fmt.Sprint(res.Total())},
			[2]string{"With activity", fmt.Sprint(len(res.Blocked))},
		)
		fmt.Fprintln(out, faintStyle.Render("Dry run: nothing was deleted."))
		ok = true
		return nil
	}

	for _, e := range res.Entries {
		switch e.Status {
		case pruner.StatusDeleted:
			sess.record(auditlog.ActionDeleted, e.Account.Name, req.Company, activityDetails(e.Activity))
		case pruner.StatusFailed:
			sess.record(auditlog.ActionDeleteFailed, e.Account.Name, req.Company, e.Err.Error())
		}
	}
	sess.metrics.Add(metrics.OutcomeDeleted, res.Deleted)
	sess.metrics.Add(metrics.OutcomeFailed, res.Failed())

	summary(out,
		[2]string{"Deleted", fmt.Sprintf("%d of %d", res.Deleted, res.Total())},
		[2]string{"Failed", fmt.Sprint(res.Failed())},
	)

	if err != nil {
		return err
	}
	if res.Failed() > 0 {
		return fmt.Errorf("%d of %d account(s) could not be deleted", res.Failed(), res.Total())
	}
	fmt.Fprintln(out, okStyle.Render("Done."))
	ok = true
	return nil
}

func printPlan(w io.Writer, res *pruner.Result) {
	fmt.Fprintf(w, "Found %d descendant account(s) under %s\n", res.Total()-1, res.Root.Name)
	for i, e := range res.Entries {
		line := fmt.Sprintf("%3d. %s", i+1, e.Account.Name)
		switch e.Status {
		case pruner.StatusDeleted:
			line = okStyle.Render(line + "  deleted")
		case pruner.StatusFailed:
			line = errStyle.Render(fmt.Sprintf("%s  failed: %v", line, e.Err))
		}
		fmt.Fprintln(w, line)
	}
}

func printActivity(w io.Writer, entries []pruner.Entry) {
	fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("%d account(s) have ledger activity:", len(entries))))
	for _, e := range entries {
		fmt.Fprintf(w, "  - %s: %s\n", e.Account.Name, activityDetails(e.Activity))
	}
}

func activityDetails(a pruner.Activity) string {
	return fmt.Sprintf("gl_entries=%d journal_entries=%d payment_entries=%d debit=%s credit=%s paid=%s",
		a.GLEntries, a.JournalEntries, a.PaymentEntries,
		a.Debit.StringFixed(2), a.Credit.StringFixed(2), a.Paid.StringFixed(2))
}
