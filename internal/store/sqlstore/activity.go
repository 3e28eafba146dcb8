package sqlstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cleared-dev/acctree/internal/model"
)

const dateFormat = "2006-01-02"

// CreateCompany inserts a company.
func (s *Store) CreateCompany(ctx context.Context, c model.Company) error {
	return s.mutate(ctx, func(q querier) error {
		if _, err := q.ExecContext(ctx, s.rebind("INSERT INTO companies (name, abbr) VALUES (?, ?)"), c.Name, c.Abbr); err != nil {
			return fmt.Errorf("inserting company %q: %w", c.Name, err)
		}
		return nil
	})
}

// AddGLEntry records a general ledger row. A missing Name is generated.
func (s *Store) AddGLEntry(ctx context.Context, e *model.GLEntry) error {
	if e.Name == "" {
		e.Name = uuid.NewString()
	}
	return s.mutate(ctx, func(q querier) error {
		_, err := q.ExecContext(ctx, s.rebind(`
			INSERT INTO gl_entries (name, account, posting_date, debit, credit, voucher_type, voucher_no)
			VALUES (?, ?, ?, ?, ?, ?, ?)`),
			e.Name, e.Account, e.PostingDate.Format(dateFormat), e.Debit, e.Credit, e.VoucherType, e.VoucherNo,
		)
		if err != nil {
			return fmt.Errorf("inserting GL entry: %w", err)
		}
		return nil
	})
}

// AddJournalEntryAccount records one journal line. A missing Name is generated.
func (s *Store) AddJournalEntryAccount(ctx context.Context, l *model.JournalEntryAccount) error {
	if l.Name == "" {
		l.Name = uuid.NewString()
	}
	return s.mutate(ctx, func(q querier) error {
		_, err := q.ExecContext(ctx, s.rebind(`
			INSERT INTO journal_entry_accounts (name, journal_entry, account, debit, credit)
			VALUES (?, ?, ?, ?, ?)`),
			l.Name, l.JournalEntry, l.Account, l.Debit, l.Credit,
		)
		if err != nil {
			return fmt.Errorf("inserting journal entry account: %w", err)
		}
		return nil
	})
}

// AddPaymentEntry records a payment. A missing Name is generated.
func (s *Store) AddPaymentEntry(ctx context.Context, p *model.PaymentEntry) error {
	if p.Name == "" {
		p.Name = uuid.NewString()
	}
	return s.mutate(ctx, func(q querier) error {
		_, err := q.ExecContext(ctx, s.rebind(`
			INSERT INTO payment_entries (name, posting_date, paid_from, paid_to, paid_amount)
			VALUES (?, ?, ?, ?, ?)`),
			p.Name, p.PostingDate.Format(dateFormat), p.PaidFrom, p.PaidTo, p.PaidAmount,
		)
		if err != nil {
			return fmt.Errorf("inserting payment entry: %w", err)
		}
		return nil
	})
}
