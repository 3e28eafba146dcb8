// Package pruner deletes an account together with every account below it.
//
// Accounts are removed children first so no account is deleted while another
// still points at it. Accounts referenced by ledger activity block the run
// unless the caller's OverridePolicy says otherwise.
package pruner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cleared-dev/acctree/internal/model"
	"github.com/cleared-dev/acctree/internal/store"
)

// OverridePolicy decides what happens when accounts with activity are found.
type OverridePolicy int

const (
	// PolicyAbort stops with a *BlockedError.
	PolicyAbort OverridePolicy = iota
	// PolicyPromptConfirm asks the Confirmer before continuing and before deleting.
	PolicyPromptConfirm
	// PolicyForce logs a warning and continues.
	PolicyForce
)

func (p OverridePolicy) String() string {
	switch p {
	case PolicyAbort:
		return "abort"
	case PolicyPromptConfirm:
		return "prompt"
	case PolicyForce:
		return "force"
	default:
		return fmt.Sprintf("OverridePolicy(%d)", int(p))
	}
}

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// Status is the outcome of one plan entry.
type Status string

const (
	StatusPlanned Status = "planned"
	StatusDeleted Status = "deleted"
	StatusFailed  Status = "failed"
)

// Entry is one account in the deletion plan.
type Entry struct {
	Account  model.Account
	Activity Activity
	Status   Status
	Err      error
}

// Request describes one prune run.
type Request struct {
	Account string
	Company string
	DryRun  bool
	Policy  OverridePolicy
}

// Result reports what a run planned and did. Entries are in deletion order,
// the root last.
type Result struct {
	Root    model.Account
	DryRun  bool
	Entries []Entry
	Blocked []Entry
	Deleted int
}

// Total is the number of accounts in the plan.
func (r *Result) Total() int { return len(r.Entries) }

// Failed is the number of plan entries whose delete failed.
func (r *Result) Failed() int {
	n := 0
	for _, e := range r.Entries {
		if e.Status == StatusFailed {
			n++
		}
	}
	return n
}

// Plan returns the account names in deletion order.
func (r *Result) Plan() []string {
	names := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		names[i] = e.Account.Name
	}
	return names
}

// Pruner runs delete plans against a store.
type Pruner struct {
	store   store.Store
	confirm Confirmer
	logger  *slog.Logger
}

// New returns a Pruner. confirm may be nil unless PolicyPromptConfirm is used.
func New(s store.Store, confirm Confirmer) *Pruner {
	return &Pruner{store: s, confirm: confirm, logger: slog.Default()}
}

// Run builds the deletion plan for req.Account and, unless req.DryRun, executes
// it. Delete failures do not stop the sweep; they are recorded on the
// matching entry and the remaining entries are still attempted. Writes are
// committed once at the end; if that commit fails every entry is reported
// failed and Deleted is zero.
func (p *Pruner) Run(ctx context.Context, req Request) (*Result, error) {
	root, err := resolveRoot(ctx, p.store, req.Account, req.Company)
	if err != nil {
		return nil, err
	}

	res := &Result{Root: *root, DryRun: req.DryRun}

	rootActivity, err := CountActivity(ctx, p.store, root.Name)
	if err != nil {
		return nil, err
	}
	rootEntry := Entry{Account: *root, Activity: rootActivity, Status: StatusPlanned}
	if !rootActivity.Safe() {
		res.Blocked = append(res.Blocked, rootEntry)
		if !req.DryRun {
			prompt := fmt.Sprintf("Account %s has %d ledger records. Continue anyway?", root.Name, rootActivity.Total())
			if err := p.override(req.Policy, []Entry{rootEntry}, prompt); err != nil {
				return nil, err
			}
		}
	}

	children, err := descendants(ctx, p.store, *root)
	if err != nil {
		return nil, err
	}

	var unsafe []Entry
	for _, child := range children {
		act, err := CountActivity(ctx, p.store, child.Name)
		if err != nil {
			return nil, err
		}
		e := Entry{Account: child, Activity: act, Status: StatusPlanned}
		if !act.Safe() {
			unsafe = append(unsafe, e)
		}
		res.Entries = append(res.Entries, e)
	}
	res.Entries = append(res.Entries, rootEntry)

	if len(unsafe) > 0 {
		res.Blocked = append(append([]Entry(nil), unsafe...), res.Blocked...)
		if !req.DryRun {
			prompt := fmt.Sprintf("%d descendant account(s) have ledger records. Continue anyway?", len(unsafe))
			if err := p.override(req.Policy, unsafe, prompt); err != nil {
				return nil, err
			}
		}
	}

	p.logger.Info("deletion plan built",
		"account", root.Name,
		"company", req.Company,
		"accounts", res.Total(),
		"blocked", len(res.Blocked),
		"dry_run", req.DryRun,
	)

	if req.DryRun {
		return res, nil
	}

	if req.Policy == PolicyPromptConfirm {
		ok, err := p.ask(fmt.Sprintf("Delete %d account(s) under %s? This cannot be undone.", res.Total(), root.Name))
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrDeclined
		}
	}

	for i := range res.Entries {
		e := &res.Entries[i]
		if err := p.store.Delete(ctx, store.DocAccount, e.Account.Name, store.DeleteOptions{Force: true}); err != nil {
			e.Status = StatusFailed
			e.Err = err
			p.logger.Error("deleting account", "account", e.Account.Name, "err", err)
			continue
		}
		e.Status = StatusDeleted
		res.Deleted++
		p.logger.Debug("deleted account", "account", e.Account.Name)
	}

	if err := p.store.Commit(); err != nil {
		err = fmt.Errorf("committing deletes: %w", err)
		// Nothing persisted: every delete in the sweep was rolled back.
		for i := range res.Entries {
			if e := &res.Entries[i]; e.Status == StatusDeleted {
				e.Status = StatusFailed
				e.Err = err
			}
		}
		res.Deleted = 0
		return res, err
	}
	return res, nil
}

func (p *Pruner) override(policy OverridePolicy, unsafe []Entry, prompt string) error {
	switch policy {
	case PolicyForce:
		for _, e := range unsafe {
			p.logger.Warn("deleting account with ledger activity",
				"account", e.Account.Name,
				"gl_entries", e.Activity.GLEntries,
				"journal_entries", e.Activity.JournalEntries,
				"payment_entries", e.Activity.PaymentEntries,
				"debit", e.Activity.Debit.StringFixed(2),
				"credit", e.Activity.Credit.StringFixed(2),
				"paid", e.Activity.Paid.StringFixed(2),
			)
		}
		return nil
	case PolicyPromptConfirm:
		ok, err := p.ask(prompt)
		if err != nil {
			return err
		}
		if !ok {
			return ErrDeclined
		}
		return nil
	default:
		return &BlockedError{Accounts: unsafe}
	}
}

func (p *Pruner) ask(prompt string) (bool, error) {
	if p.confirm == nil {
		return false, errors.New("confirmation required but no confirmer configured")
	}
	ok, err := p.confirm.Confirm(prompt)
	if err != nil {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}
	return ok, nil
}
