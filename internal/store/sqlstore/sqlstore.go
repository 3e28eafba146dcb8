// Package sqlstore implements store.Store on database/sql, backed by SQLite
// (modernc.org/sqlite, no CGO) or PostgreSQL (pgx).
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/cleared-dev/acctree/internal/store"
)

var _ store.Store = (*Store)(nil)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is a document store over one database handle. Writes are collected in
// a single open transaction until Commit.
type Store struct {
	db      *sql.DB
	dialect dialect
	tx      *sql.Tx
}

// Open connects to the database and bootstraps the schema.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	var (
		s   *Store
		err error
	)
	switch driver {
	case DriverSQLite:
		s, err = openSQLite(ctx, dsn)
	case DriverPostgres:
		s, err = openPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, err
	}

	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			s.db.Close()
			return nil, fmt.Errorf("bootstrapping schema: %w", err)
		}
	}
	return s, nil
}

func openSQLite(ctx context.Context, dsn string) (*Store, error) {
	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One connection: the foreign_keys pragma is per connection, and reads
	// must see the pending transaction.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	return &Store{db: db, dialect: sqliteDialect}, nil
}

func openPostgres(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Store{db: db, dialect: postgresDialect}, nil
}

// conn returns the open transaction when there is one, so reads observe
// uncommitted writes.
func (s *Store) conn() querier {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

func (s *Store) rebind(query string) string {
	return s.dialect.rebind(query)
}

// mutate runs fn inside the pending transaction, opening one if needed. Each
// call is wrapped in a savepoint so a failed write leaves earlier writes in
// the transaction intact.
func (s *Store) mutate(ctx context.Context, fn func(q querier) error) error {
	if s.tx == nil {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning transaction: %w", err)
		}
		s.tx = tx
	}

	if _, err := s.tx.ExecContext(ctx, "SAVEPOINT acctree_write"); err != nil {
		return fmt.Errorf("creating savepoint: %w", err)
	}

	if err := fn(s.tx); err != nil {
		if _, rbErr := s.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT acctree_write"); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rolling back to savepoint: %w", rbErr))
		}
		return err
	}

	if _, err := s.tx.ExecContext(ctx, "RELEASE SAVEPOINT acctree_write"); err != nil {
		return fmt.Errorf("releasing savepoint: %w", err)
	}
	return nil
}

// Commit flushes pending writes. It is a no-op when nothing is pending.
func (s *Store) Commit() error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

// Close discards uncommitted writes and closes the database.
func (s *Store) Close() error {
	if s.tx != nil {
		_ = s.tx.Rollback()
		s.tx = nil
	}
	return s.db.Close()
}

// Exists reports whether a document with the given name exists.
func (s *Store) Exists(ctx context.Context, doctype store.DocType, name string) (bool, error) {
	t, err := tableFor(doctype)
	if err != nil {
		return false, err
	}

	var one int
	err = s.conn().QueryRowContext(ctx, s.rebind("SELECT 1 FROM "+t.name+" WHERE name = ?"), name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking %s %q: %w", doctype, name, err)
	}
	return true, nil
}

// Count returns the number of documents matching filters.
func (s *Store) Count(ctx context.Context, doctype store.DocType, filters store.Filters) (int, error) {
	t, err := tableFor(doctype)
	if err != nil {
		return 0, err
	}

	where, args, err := t.where(filters)
	if err != nil {
		return 0, err
	}

	var n int
	if err := s.conn().QueryRowContext(ctx, s.rebind("SELECT COUNT(*) FROM "+t.name+where), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", doctype, err)
	}
	return n, nil
}

// Sum totals the numeric column field over the documents matching filters.
// No matching documents sum to zero.
func (s *Store) Sum(ctx context.Context, doctype store.DocType, field string, filters store.Filters) (decimal.Decimal, error) {
	t, err := tableFor(doctype)
	if err != nil {
		return decimal.Zero, err
	}
	if !t.amounts[field] {
		return decimal.Zero, fmt.Errorf("%w: %s.%s", store.ErrUnknownField, t.name, field)
	}

	where, args, err := t.where(filters)
	if err != nil {
		return decimal.Zero, err
	}

	var total decimal.Decimal
	query := "SELECT COALESCE(SUM(" + field + "), 0) FROM " + t.name + where
	if err := s.conn().QueryRowContext(ctx, s.rebind(query), args...).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("summing %s.%s: %w", doctype, field, err)
	}
	return total, nil
}

// Delete removes a document. Accounts are refused with store.ErrLinked while
// they have child accounts or ledger activity, unless opts.Force is set.
// Forced deletes still cannot remove an account whose children remain: the
// parent_account foreign key rejects it.
func (s *Store) Delete(ctx context.Context, doctype store.DocType, name string, opts store.DeleteOptions) error {
	t, err := tableFor(doctype)
	if err != nil {
		return err
	}

	if doctype == store.DocAccount && !opts.Force {
		if err := s.checkAccountLinks(ctx, name); err != nil {
			return err
		}
	}

	return s.mutate(ctx, func(q querier) error {
		res, err := q.ExecContext(ctx, s.rebind("DELETE FROM "+t.name+" WHERE name = ?"), name)
		if err != nil {
			return fmt.Errorf("deleting %s %q: %w", doctype, name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("deleting %s %q: %w", doctype, name, err)
		}
		if n == 0 {
			return fmt.Errorf("%s %q: %w", doctype, name, store.ErrNotFound)
		}
		return nil
	})
}

func (s *Store) checkAccountLinks(ctx context.Context, name string) error {
	checks := []struct {
		doctype store.DocType
		filters store.Filters
	}{
		{store.DocAccount, store.Filters{"parent_account": name}},
		{store.DocGLEntry, store.Filters{"account": name}},
		{store.DocJournalEntryAccount, store.Filters{"account": name}},
		{store.DocPaymentEntry, store.Filters{"paid_from": name}},
		{store.DocPaymentEntry, store.Filters{"paid_to": name}},
	}
	for _, c := range checks {
		n, err := s.Count(ctx, c.doctype, c.filters)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("account %q: %w: %d %s record(s)", name, store.ErrLinked, n, c.doctype)
		}
	}
	return nil
}
