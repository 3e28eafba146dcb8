// Package store defines the document store the account tools read from and write to.
package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/acctree/internal/model"
)

// DocType names a kind of stored document.
type DocType string

const (
	DocCompany             DocType = "Company"
	DocAccount             DocType = "Account"
	DocGLEntry             DocType = "GL Entry"
	DocJournalEntryAccount DocType = "Journal Entry Account"
	DocPaymentEntry        DocType = "Payment Entry"
)

var (
	// ErrNotFound is returned when a named document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrLinked is returned when a non-forced delete hits child accounts or ledger activity.
	ErrLinked = errors.New("document is linked to other records")
	// ErrUnknownDocType is returned for doc types the store has no table for.
	ErrUnknownDocType = errors.New("unknown doc type")
	// ErrUnknownField is returned when a filter or sum names a column the doc type does not have.
	ErrUnknownField = errors.New("unknown filter field")
)

// Filters restricts Count to documents whose fields equal the given values.
type Filters map[string]any

// AccountFilter selects accounts for ListAccounts.
type AccountFilter struct {
	Company string
	Parent  string // exact parent match when set
	Roots   bool   // only accounts without a parent
}

// DeleteOptions controls Delete.
type DeleteOptions struct {
	// Force skips the child account and ledger activity link checks.
	Force bool
}

//go:generate mockgen -source=store.go -destination=store_mock.go -package=store

// Store is the document store. Mutations stay pending until Commit; Close
// discards anything not yet committed.
type Store interface {
	Exists(ctx context.Context, doctype DocType, name string) (bool, error)
	GetAccount(ctx context.Context, name string) (*model.Account, error)
	ListAccounts(ctx context.Context, filter AccountFilter) ([]model.Account, error)
	InsertAccount(ctx context.Context, acct *model.Account) error
	Delete(ctx context.Context, doctype DocType, name string, opts DeleteOptions) error
	Count(ctx context.Context, doctype DocType, filters Filters) (int, error)
	Sum(ctx context.Context, doctype DocType, field string, filters Filters) (decimal.Decimal, error)
	Commit() error
	Close() error
}
