package pruner

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/acctree/internal/store"
)

// Activity counts the ledger records that reference an account. The amounts
// are informational; only the counts decide whether an account is safe.
type Activity struct {
	GLEntries      int
	JournalEntries int
	PaymentEntries int

	// Debit and Credit total GL entries and journal lines.
	Debit  decimal.Decimal
	Credit decimal.Decimal
	// Paid totals payments on either side.
	Paid decimal.Decimal
}

// Total is the number of referencing records across all categories.
func (a Activity) Total() int {
	return a.GLEntries + a.JournalEntries + a.PaymentEntries
}

// Safe reports whether nothing references the account.
func (a Activity) Safe() bool {
	return a.Total() == 0
}

// CountActivity counts GL entries, journal lines, and payments (either side)
// that reference account, and totals their amounts.
func CountActivity(ctx context.Context, s store.Store, account string) (Activity, error) {
	a := Activity{Debit: decimal.Zero, Credit: decimal.Zero, Paid: decimal.Zero}
	var err error

	if a.GLEntries, err = s.Count(ctx, store.DocGLEntry, store.Filters{"account": account}); err != nil {
		return Activity{}, fmt.Errorf("counting GL entries for %q: %w", account, err)
	}
	if a.JournalEntries, err = s.Count(ctx, store.DocJournalEntryAccount, store.Filters{"account": account}); err != nil {
		return Activity{}, fmt.Errorf("counting journal entries for %q: %w", account, err)
	}

	paidFrom, err := s.Count(ctx, store.DocPaymentEntry, store.Filters{"paid_from": account})
	if err != nil {
		return Activity{}, fmt.Errorf("counting payment entries for %q: %w", account, err)
	}
	paidTo, err := s.Count(ctx, store.DocPaymentEntry, store.Filters{"paid_to": account})
	if err != nil {
		return Activity{}, fmt.Errorf("counting payment entries for %q: %w", account, err)
	}
	a.PaymentEntries = paidFrom + paidTo

	if a.Safe() {
		return a, nil
	}

	sums := []struct {
		doctype store.DocType
		field   string
		filters store.Filters
		into    *decimal.Decimal
	}{
		{store.DocGLEntry, "debit", store.Filters{"account": account}, &a.Debit},
		{store.DocGLEntry, "credit", store.Filters{"account": account}, &a.Credit},
		{store.DocJournalEntryAccount, "debit", store.Filters{"account": account}, &a.Debit},
		{store.DocJournalEntryAccount, "credit", store.Filters{"account": account}, &a.Credit},
		{store.DocPaymentEntry, "paid_amount", store.Filters{"paid_from": account}, &a.Paid},
		{store.DocPaymentEntry, "paid_amount", store.Filters{"paid_to": account}, &a.Paid},
	}
	for _, sum := range sums {
		v, err := s.Sum(ctx, sum.doctype, sum.field, sum.filters)
		if err != nil {
			return Activity{}, fmt.Errorf("totalling %s for %q: %w", sum.doctype, account, err)
		}
		*sum.into = sum.into.Add(v)
	}

	return a, nil
}
