package sqlstore

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cleared-dev/acctree/internal/store"
)

// schema bootstraps an empty database. Statements are idempotent and written
// in the subset of SQL that SQLite and PostgreSQL share.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS companies (
    name TEXT PRIMARY KEY,
    abbr TEXT NOT NULL DEFAULT ''
)`,
	`CREATE TABLE IF NOT EXISTS accounts (
    name TEXT PRIMARY KEY,
    account_name TEXT NOT NULL,
    parent_account TEXT REFERENCES accounts(name),
    is_group INTEGER NOT NULL DEFAULT 0,
    account_type TEXT NOT NULL DEFAULT '',
    root_type TEXT NOT NULL DEFAULT '',
    company TEXT NOT NULL REFERENCES companies(name),
    account_number TEXT NOT NULL DEFAULT ''
)`,
	`CREATE INDEX IF NOT EXISTS idx_accounts_parent_account ON accounts(parent_account)`,
	`CREATE INDEX IF NOT EXISTS idx_accounts_company ON accounts(company)`,
	`CREATE TABLE IF NOT EXISTS gl_entries (
    name TEXT PRIMARY KEY,
    account TEXT NOT NULL,
    posting_date TEXT NOT NULL,
    debit NUMERIC(18,2) NOT NULL DEFAULT 0,
    credit NUMERIC(18,2) NOT NULL DEFAULT 0,
    voucher_type TEXT NOT NULL DEFAULT '',
    voucher_no TEXT NOT NULL DEFAULT ''
)`,
	`CREATE INDEX IF NOT EXISTS idx_gl_entries_account ON gl_entries(account)`,
	`CREATE TABLE IF NOT EXISTS journal_entry_accounts (
    name TEXT PRIMARY KEY,
    journal_entry TEXT NOT NULL DEFAULT '',
    account TEXT NOT NULL,
    debit NUMERIC(18,2) NOT NULL DEFAULT 0,
    credit NUMERIC(18,2) NOT NULL DEFAULT 0
)`,
	`CREATE INDEX IF NOT EXISTS idx_journal_entry_accounts_account ON journal_entry_accounts(account)`,
	`CREATE TABLE IF NOT EXISTS payment_entries (
    name TEXT PRIMARY KEY,
    posting_date TEXT NOT NULL,
    paid_from TEXT NOT NULL DEFAULT '',
    paid_to TEXT NOT NULL DEFAULT '',
    paid_amount NUMERIC(18,2) NOT NULL DEFAULT 0
)`,
	`CREATE INDEX IF NOT EXISTS idx_payment_entries_paid_from ON payment_entries(paid_from)`,
	`CREATE INDEX IF NOT EXISTS idx_payment_entries_paid_to ON payment_entries(paid_to)`,
}

// table maps a doc type to its table, the columns filters may reference and
// the numeric columns Sum may total.
type table struct {
	name    string
	fields  map[string]bool
	amounts map[string]bool
}

func fields(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

var tables = map[store.DocType]table{
	store.DocCompany: {
		name:   "companies",
		fields: fields("name", "abbr"),
	},
	store.DocAccount: {
		name:   "accounts",
		fields: fields("name", "account_name", "parent_account", "is_group", "account_type", "root_type", "company", "account_number"),
	},
	store.DocGLEntry: {
		name:    "gl_entries",
		fields:  fields("name", "account", "posting_date", "voucher_type", "voucher_no"),
		amounts: fields("debit", "credit"),
	},
	store.DocJournalEntryAccount: {
		name:    "journal_entry_accounts",
		fields:  fields("name", "journal_entry", "account"),
		amounts: fields("debit", "credit"),
	},
	store.DocPaymentEntry: {
		name:    "payment_entries",
		fields:  fields("name", "posting_date", "paid_from", "paid_to"),
		amounts: fields("paid_amount"),
	},
}

func tableFor(doctype store.DocType) (table, error) {
	t, ok := tables[doctype]
	if !ok {
		return table{}, fmt.Errorf("%w: %q", store.ErrUnknownDocType, doctype)
	}
	return t, nil
}

// where renders filters as an AND-joined equality clause with ? placeholders.
// Keys are sorted so the generated SQL is stable.
func (t table) where(filters store.Filters) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}

	keys := make([]string, 0, len(filters))
	for k := range filters {
		if !t.fields[k] {
			return "", nil, fmt.Errorf("%w: %s.%s", store.ErrUnknownField, t.name, k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		clauses[i] = k + " = ?"
		args[i] = filters[k]
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}
