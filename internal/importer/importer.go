// Package importer loads chart-of-accounts rows into the store.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cleared-dev/acctree/internal/chart"
	"github.com/cleared-dev/acctree/internal/model"
	"github.com/cleared-dev/acctree/internal/pruner"
	"github.com/cleared-dev/acctree/internal/store"
)

// ErrCompanyNotFound is returned when the target company does not exist.
var ErrCompanyNotFound = errors.New("company not found")

// ErrParentNotFound is recorded for rows whose parent account does not exist.
var ErrParentNotFound = errors.New("parent account does not exist")

// RowError describes a row (or whole file, when Row is 0) that could not be
// imported.
type RowError struct {
	File    string
	Row     int
	Account string
	Err     error
}

func (e RowError) Error() string {
	switch {
	case e.Row > 0 && e.File != "":
		return fmt.Sprintf("%s row %d (%s): %v", e.File, e.Row, e.Account, e.Err)
	case e.Row > 0:
		return fmt.Sprintf("row %d (%s): %v", e.Row, e.Account, e.Err)
	case e.Account != "":
		return fmt.Sprintf("%s: %v", e.Account, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.File, e.Err)
	}
}

func (e RowError) Unwrap() error { return e.Err }

// Result tallies an import.
type Result struct {
	Imported int
	Skipped  int
	Deleted  int // accounts removed by a reset
	Created  []string
	Errors   []RowError
}

// OK reports whether the import finished without errors.
func (r Result) OK() bool { return len(r.Errors) == 0 }

func (r *Result) merge(o Result) {
	r.Imported += o.Imported
	r.Skipped += o.Skipped
	r.Deleted += o.Deleted
	r.Created = append(r.Created, o.Created...)
	r.Errors = append(r.Errors, o.Errors...)
}

// Options controls ImportFiles.
type Options struct {
	Company  string
	Reset    bool // delete every non-root account of the company first
	SkipRoot bool // skip rows without a parent
}

// Importer creates accounts from chart rows.
type Importer struct {
	store  store.Store
	logger *slog.Logger
}

// New returns an Importer writing to s.
func New(s store.Store) *Importer {
	return &Importer{store: s, logger: slog.Default()}
}

// ImportRows creates one account per row, in order. Rows are never reordered:
// a child listed before its parent fails. Nothing is committed.
func (i *Importer) ImportRows(ctx context.Context, rows []chart.Row, company string, skipRoot bool) Result {
	var res Result
	for _, row := range rows {
		name := row.AccountName
		if name == "" {
			continue
		}
		fail := func(err error) {
			res.Errors = append(res.Errors, RowError{Row: row.Line, Account: name, Err: err})
			i.logger.Warn("row not imported", "row", row.Line, "account", name, "err", err)
		}

		if skipRoot && row.ParentAccount == "" {
			res.Skipped++
			i.logger.Debug("skipping root account", "account", name)
			continue
		}

		exists, err := i.store.Exists(ctx, store.DocAccount, name)
		if err != nil {
			fail(err)
			continue
		}
		if exists {
			res.Skipped++
			i.logger.Debug("account already exists", "account", name)
			continue
		}

		if row.ParentAccount != "" {
			ok, err := i.store.Exists(ctx, store.DocAccount, row.ParentAccount)
			if err != nil {
				fail(err)
				continue
			}
			if !ok {
				fail(fmt.Errorf("%w: %s", ErrParentNotFound, row.ParentAccount))
				continue
			}
		}

		acct := &model.Account{
			Name:          name,
			AccountName:   name,
			ParentAccount: row.ParentAccount,
			AccountType:   row.AccountType,
			AccountNumber: row.AccountNumber,
			RootType:      model.RootType(row.RootType),
			Company:       company,
		}
		if err := i.store.InsertAccount(ctx, acct); err != nil {
			fail(err)
			continue
		}
		res.Imported++
		res.Created = append(res.Created, name)
		i.logger.Debug("imported account", "account", name, "parent", row.ParentAccount)
	}
	return res
}

// ImportFiles imports each chart file in turn, committing after every file.
// A file that cannot be read is recorded as an error and the next file is
// still processed. Directories are expanded to the chart files they contain.
func (i *Importer) ImportFiles(ctx context.Context, paths []string, opts Options) (Result, error) {
	var res Result

	ok, err := i.store.Exists(ctx, store.DocCompany, opts.Company)
	if err != nil {
		return res, fmt.Errorf("checking company: %w", err)
	}
	if !ok {
		return res, fmt.Errorf("%w: %q", ErrCompanyNotFound, opts.Company)
	}

	if opts.Reset {
		reset, err := i.Reset(ctx, opts.Company)
		res.merge(reset)
		if err != nil {
			return res, err
		}
	}

	files, err := Expand(paths)
	if err != nil {
		return res, err
	}

	for _, path := range files {
		rows, err := chart.ReadFile(path)
		if err != nil {
			res.Errors = append(res.Errors, RowError{File: path, Err: err})
			i.logger.Error("reading chart file", "file", path, "err", err)
			continue
		}

		fileRes := i.ImportRows(ctx, rows, opts.Company, opts.SkipRoot)
		for j := range fileRes.Errors {
			fileRes.Errors[j].File = path
		}

		if err := i.store.Commit(); err != nil {
			err = fmt.Errorf("committing %s: %w", path, err)
			res.merge(uncommitted(fileRes, rows, path, err))
			return res, err
		}
		res.merge(fileRes)
		i.logger.Info("chart file imported",
			"file", path,
			"imported", fileRes.Imported,
			"skipped", fileRes.Skipped,
			"errors", len(fileRes.Errors),
		)
	}
	return res, nil
}

// Reset deletes every non-root account of company, deepest first, and
// commits. Accounts that cannot be deleted are recorded in Result.Errors, as
// are all of them when the commit fails.
func (i *Importer) Reset(ctx context.Context, company string) (Result, error) {
	var res Result

	roots, err := i.store.ListAccounts(ctx, store.AccountFilter{Company: company, Roots: true})
	if err != nil {
		return res, fmt.Errorf("listing root accounts: %w", err)
	}

	var deleted []string
	for _, root := range roots {
		accounts, err := pruner.FindDescendants(ctx, i.store, root.Name, company)
		if err != nil {
			return res, fmt.Errorf("walking %q: %w", root.Name, err)
		}
		for _, a := range accounts {
			if err := i.store.Delete(ctx, store.DocAccount, a.Name, store.DeleteOptions{Force: true}); err != nil {
				res.Errors = append(res.Errors, RowError{Account: a.Name, Err: err})
				i.logger.Warn("reset: deleting account", "account", a.Name, "err", err)
				continue
			}
			deleted = append(deleted, a.Name)
		}
	}

	if err := i.store.Commit(); err != nil {
		err = fmt.Errorf("committing reset: %w", err)
		for _, name := range deleted {
			res.Errors = append(res.Errors, RowError{Account: name, Err: err})
		}
		return res, err
	}
	res.Deleted = len(deleted)
	i.logger.Info("reset chart of accounts", "company", company, "deleted", res.Deleted)
	return res, nil
}

// uncommitted rewrites the result of a file whose commit failed: the accounts
// it created were rolled back, so each becomes an error and nothing counts as
// imported.
func uncommitted(fileRes Result, rows []chart.Row, path string, err error) Result {
	lines := make(map[string]int, len(rows))
	for _, row := range rows {
		if _, ok := lines[row.AccountName]; !ok {
			lines[row.AccountName] = row.Line
		}
	}

	out := Result{Skipped: fileRes.Skipped, Errors: fileRes.Errors}
	for _, name := range fileRes.Created {
		out.Errors = append(out.Errors, RowError{File: path, Row: lines[name], Account: name, Err: err})
	}
	return out
}
