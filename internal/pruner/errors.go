package pruner

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when the root account does not exist in the company.
	ErrNotFound = errors.New("account not found")
	// ErrBlocked is returned when accounts with ledger activity would be deleted without an override.
	ErrBlocked = errors.New("accounts have ledger activity")
	// ErrCycleDetected is returned when the parent links loop back on themselves.
	ErrCycleDetected = errors.New("cycle detected in account tree")
	// ErrDeclined is returned when the operator answers no to a confirmation.
	ErrDeclined = errors.New("operation declined")
)

// BlockedError lists the accounts whose activity stopped the run.
type BlockedError struct {
	Accounts []Entry
}

func (e *BlockedError) Error() string {
	names := make([]string, len(e.Accounts))
	for i, a := range e.Accounts {
		names[i] = fmt.Sprintf("%s (%d)", a.Account.Name, a.Activity.Total())
	}
	return fmt.Sprintf("%d account(s) have ledger activity: %s", len(e.Accounts), strings.Join(names, ", "))
}

func (e *BlockedError) Unwrap() error { return ErrBlocked }

// CycleError names the account that was reached twice.
type CycleError struct {
	Account string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected in account tree at %q", e.Account)
}

func (e *CycleError) Unwrap() error { return ErrCycleDetected }
