package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// GLEntry is a posted general ledger row.
type GLEntry struct {
	Name        string
	Account     string
	PostingDate time.Time
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	VoucherType string
	VoucherNo   string
}

// JournalEntryAccount is one line of a journal entry.
type JournalEntryAccount struct {
	Name         string
	JournalEntry string
	Account      string
	Debit        decimal.Decimal
	Credit       decimal.Decimal
}

// PaymentEntry moves money from one account to another.
type PaymentEntry struct {
	Name        string
	PostingDate time.Time
	PaidFrom    string
	PaidTo      string
	PaidAmount  decimal.Decimal
}
