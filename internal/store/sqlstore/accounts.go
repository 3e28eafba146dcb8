package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cleared-dev/acctree/internal/model"
	"github.com/cleared-dev/acctree/internal/store"
)

const selectAccountColumns = `name, account_name, parent_account, is_group, account_type, root_type, company, account_number`

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(sc scanner) (model.Account, error) {
	var (
		a       model.Account
		parent  sql.NullString
		isGroup int
		root    string
	)
	if err := sc.Scan(&a.Name, &a.AccountName, &parent, &isGroup, &a.AccountType, &root, &a.Company, &a.AccountNumber); err != nil {
		return model.Account{}, err
	}
	a.ParentAccount = parent.String
	a.IsGroup = isGroup != 0
	a.RootType = model.RootType(root)
	return a, nil
}

// GetAccount returns the named account or store.ErrNotFound.
func (s *Store) GetAccount(ctx context.Context, name string) (*model.Account, error) {
	return s.getAccount(ctx, s.conn(), name)
}

func (s *Store) getAccount(ctx context.Context, q querier, name string) (*model.Account, error) {
	row := q.QueryRowContext(ctx, s.rebind("SELECT "+selectAccountColumns+" FROM accounts WHERE name = ?"), name)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %q: %w", name, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting account %q: %w", name, err)
	}
	return &a, nil
}

// ListAccounts returns accounts matching filter, ordered by name.
func (s *Store) ListAccounts(ctx context.Context, filter store.AccountFilter) ([]model.Account, error) {
	query := "SELECT " + selectAccountColumns + " FROM accounts WHERE 1 = 1"
	var args []any

	if filter.Company != "" {
		query += " AND company = ?"
		args = append(args, filter.Company)
	}
	switch {
	case filter.Roots:
		query += " AND parent_account IS NULL"
	case filter.Parent != "":
		query += " AND parent_account = ?"
		args = append(args, filter.Parent)
	}
	query += " ORDER BY name"

	rows, err := s.conn().QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	return accounts, nil
}

// InsertAccount creates an account. An empty Name defaults to AccountName.
// Adding a child under a leaf turns the parent into a group, and a child
// without a root type inherits its parent's.
func (s *Store) InsertAccount(ctx context.Context, acct *model.Account) error {
	if acct.Name == "" {
		acct.Name = acct.AccountName
	}
	if acct.Name == "" {
		return errors.New("account name is required")
	}

	return s.mutate(ctx, func(q querier) error {
		var parent sql.NullString
		if acct.ParentAccount != "" {
			p, err := s.getAccount(ctx, q, acct.ParentAccount)
			if err != nil {
				return fmt.Errorf("loading parent: %w", err)
			}
			if !p.IsGroup {
				if _, err := q.ExecContext(ctx, s.rebind("UPDATE accounts SET is_group = 1 WHERE name = ?"), p.Name); err != nil {
					return fmt.Errorf("marking %q as group: %w", p.Name, err)
				}
			}
			if acct.RootType == "" {
				acct.RootType = p.RootType
			}
			parent = sql.NullString{String: acct.ParentAccount, Valid: true}
		}

		_, err := q.ExecContext(ctx, s.rebind(`
			INSERT INTO accounts (name, account_name, parent_account, is_group, account_type, root_type, company, account_number)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
			acct.Name,
			acct.AccountName,
			parent,
			boolToInt(acct.IsGroup),
			acct.AccountType,
			string(acct.RootType),
			acct.Company,
			acct.AccountNumber,
		)
		if err != nil {
			return fmt.Errorf("inserting account %q: %w", acct.Name, err)
		}
		return nil
	})
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
