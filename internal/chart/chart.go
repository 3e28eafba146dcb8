// Package chart reads and writes chart-of-accounts files.
//
// A chart file is a table whose first row names the columns. Only
// "Account Name" is required; "Parent Account", "Account Type",
// "Account Number" and "Root Type" are picked up when present and any other
// column is ignored. Header matching ignores case, surrounding space and the
// difference between "_" and " ".
package chart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cleared-dev/acctree/internal/encoding"
	"github.com/cleared-dev/acctree/internal/model"
)

// Column headers as written by WriteRows.
const (
	HeaderAccountName   = "Account Name"
	HeaderParentAccount = "Parent Account"
	HeaderAccountType   = "Account Type"
	HeaderAccountNumber = "Account Number"
	HeaderRootType      = "Root Type"
)

var headers = []string{HeaderAccountName, HeaderParentAccount, HeaderAccountType, HeaderAccountNumber, HeaderRootType}

// ErrMissingHeader is returned when the header row has no Account Name column.
var ErrMissingHeader = errors.New("missing Account Name column")

// Row is one data row of a chart file. Line is the 1-based line (or sheet
// row) it came from, 0 for rows built in memory.
type Row struct {
	Line          int
	AccountName   string
	ParentAccount string
	AccountType   string
	AccountNumber string
	RootType      string
}

// FromAccount converts a stored account to a row.
func FromAccount(a model.Account) Row {
	return Row{
		AccountName:   a.Name,
		ParentAccount: a.ParentAccount,
		AccountType:   a.AccountType,
		AccountNumber: a.AccountNumber,
		RootType:      string(a.RootType),
	}
}

// columns records where each known header sits; -1 when absent.
type columns struct {
	name, parent, accountType, number, rootType int
}

func normalizeHeader(h string) string {
	h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	return strings.ToLower(strings.ReplaceAll(h, "_", " "))
}

func mapColumns(header []string) (columns, error) {
	cols := columns{-1, -1, -1, -1, -1}
	for i, h := range header {
		switch normalizeHeader(h) {
		case "account name":
			cols.name = i
		case "parent account":
			cols.parent = i
		case "account type":
			cols.accountType = i
		case "account number":
			cols.number = i
		case "root type":
			cols.rootType = i
		}
	}
	if cols.name < 0 {
		return cols, ErrMissingHeader
	}
	return cols, nil
}

func (c columns) row(line int, record []string) Row {
	get := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	return Row{
		Line:          line,
		AccountName:   get(c.name),
		ParentAccount: get(c.parent),
		AccountType:   get(c.accountType),
		AccountNumber: get(c.number),
		RootType:      get(c.rootType),
	}
}

// ReadFile reads a chart from path. Files ending in .xlsx are read as
// workbooks; everything else as CSV.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ReadXLSX(f)
	}

	r, err := encoding.NewUTF8Reader(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ReadRows(r)
}

// SortHierarchy orders rows so every parent precedes its children. Siblings
// keep their relative order. Rows whose parent is not in the set are treated
// as roots.
func SortHierarchy(rows []Row) []Row {
	byParent := make(map[string][]Row)
	present := make(map[string]bool, len(rows))
	for _, r := range rows {
		present[r.AccountName] = true
	}

	var roots []Row
	for _, r := range rows {
		if r.ParentAccount == "" || !present[r.ParentAccount] {
			roots = append(roots, r)
			continue
		}
		byParent[r.ParentAccount] = append(byParent[r.ParentAccount], r)
	}
	sort.SliceStable(roots, func(i, j int) bool {
		return roots[i].ParentAccount == "" && roots[j].ParentAccount != ""
	})

	out := make([]Row, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	var visit func(r Row)
	visit = func(r Row) {
		if seen[r.AccountName] {
			return
		}
		seen[r.AccountName] = true
		out = append(out, r)
		for _, child := range byParent[r.AccountName] {
			visit(child)
		}
	}
	for _, r := range roots {
		visit(r)
	}
	// Rows caught in a parent loop are never reached from a root.
	for _, r := range rows {
		if !seen[r.AccountName] {
			visit(r)
		}
	}
	return out
}
