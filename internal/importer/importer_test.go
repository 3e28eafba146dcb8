package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/cleared-dev/acctree/internal/chart"
	"github.com/cleared-dev/acctree/internal/model"
	"github.com/cleared-dev/acctree/internal/store"
	"github.com/cleared-dev/acctree/internal/store/sqlstore"
)

const company = "DM-CASA"

func newStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	ctx := context.Background()

	s, err := sqlstore.Open(ctx, sqlstore.DriverSQLite, filepath.Join(t.TempDir(), "site.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.CreateCompany(ctx, model.Company{Name: company, Abbr: "DC"}))
	require.NoError(t, s.InsertAccount(ctx, &model.Account{
		Name:        "Despesas - DC",
		AccountName: "Despesas",
		IsGroup:     true,
		RootType:    model.RootTypeExpense,
		Company:     company,
	}))
	require.NoError(t, s.Commit())
	return s
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func countAccounts(t *testing.T, s store.Store) int {
	t.Helper()
	n, err := s.Count(context.Background(), store.DocAccount, store.Filters{"company": company})
	require.NoError(t, err)
	return n
}

func TestImportRows(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	res := New(s).ImportRows(ctx, []chart.Row{
		{Line: 2, AccountName: "Custos Fixos", ParentAccount: "Despesas - DC"},
		{Line: 3, AccountName: "Aluguel", ParentAccount: "Custos Fixos", AccountNumber: "5110"},
		{Line: 4, AccountName: ""},
	}, company, false)

	assert.True(t, res.OK())
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, []string{"Custos Fixos", "Aluguel"}, res.Created)

	fixed, err := s.GetAccount(ctx, "Custos Fixos")
	require.NoError(t, err)
	assert.True(t, fixed.IsGroup)
	assert.Equal(t, model.RootTypeExpense, fixed.RootType)

	rent, err := s.GetAccount(ctx, "Aluguel")
	require.NoError(t, err)
	assert.False(t, rent.IsGroup)
	assert.Equal(t, "5110", rent.AccountNumber)
	assert.Equal(t, company, rent.Company)
}

func TestImportRows_MissingParent(t *testing.T) {
	s := newStore(t)

	res := New(s).ImportRows(context.Background(), []chart.Row{
		{Line: 2, AccountName: "Orphan", ParentAccount: "Nowhere"},
	}, company, false)

	assert.Equal(t, 0, res.Imported)
	require.Len(t, res.Errors, 1)
	assert.ErrorIs(t, res.Errors[0], ErrParentNotFound)
	assert.Equal(t, "row 2 (Orphan): parent account does not exist: Nowhere", res.Errors[0].Error())
	assert.Equal(t, 1, countAccounts(t, s))
}

func TestImportRows_Duplicate(t *testing.T) {
	s := newStore(t)

	res := New(s).ImportRows(context.Background(), []chart.Row{
		{Line: 2, AccountName: "Aluguel", ParentAccount: "Despesas - DC"},
		{Line: 3, AccountName: "Aluguel", ParentAccount: "Despesas - DC"},
	}, company, false)

	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 1, res.Skipped)
	assert.True(t, res.OK())
}

func TestImportRows_SkipRoot(t *testing.T) {
	s := newStore(t)

	rows := []chart.Row{
		{Line: 2, AccountName: "Receitas - DC", RootType: "Income"},
		{Line: 3, AccountName: "Vendas", ParentAccount: "Receitas - DC"},
	}

	res := New(s).ImportRows(context.Background(), rows, company, true)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 0, res.Imported)
	require.Len(t, res.Errors, 1, "child of a skipped root has no parent")

	res = New(s).ImportRows(context.Background(), rows, company, false)
	assert.Equal(t, 2, res.Imported)
	assert.True(t, res.OK())

	root, err := s.GetAccount(context.Background(), "Receitas - DC")
	require.NoError(t, err)
	assert.True(t, root.IsRoot())
	assert.Equal(t, model.RootTypeIncome, root.RootType)
}

func TestImportFiles(t *testing.T) {
	s := newStore(t)
	dir := t.TempDir()

	first := writeFile(t, dir, "01-fixed.csv", "Account Name,Parent Account,Account Number\nCustos Fixos,Despesas - DC,5100\nAluguel,Custos Fixos,5110\n")
	second := writeFile(t, dir, "02-var.csv", "Account Name,Parent Account\nViagens,Despesas - DC\nAluguel,Custos Fixos\n")
	missing := filepath.Join(dir, "missing.csv")

	res, err := New(s).ImportFiles(context.Background(), []string{first, missing, second}, Options{Company: company})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Imported)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, missing, res.Errors[0].File)
	assert.ErrorIs(t, res.Errors[0], os.ErrNotExist)
	assert.False(t, res.OK())

	assert.Equal(t, 4, countAccounts(t, s))
}

func TestImportFiles_Directory(t *testing.T) {
	s := newStore(t)
	dir := t.TempDir()
	writeFile(t, dir, "b.csv", "Account Name,Parent Account\nAluguel,Custos Fixos\n")
	writeFile(t, dir, "a.csv", "Account Name,Parent Account\nCustos Fixos,Despesas - DC\n")
	writeFile(t, dir, "notes.txt", "ignored")

	res, err := New(s).ImportFiles(context.Background(), []string{dir}, Options{Company: company})
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, 2, res.Imported)
}

func TestImportFiles_CompanyNotFound(t *testing.T) {
	s := newStore(t)

	_, err := New(s).ImportFiles(context.Background(), nil, Options{Company: "Nope Ltda"})
	assert.ErrorIs(t, err, ErrCompanyNotFound)
}

func TestImportFiles_Reset(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	dir := t.TempDir()
	path := writeFile(t, dir, "chart.csv", "Account Name,Parent Account\nCustos Fixos,Despesas - DC\nAluguel,Custos Fixos\n")

	imp := New(s)
	res, err := imp.ImportFiles(ctx, []string{path}, Options{Company: company})
	require.NoError(t, err)
	require.Equal(t, 2, res.Imported)

	res, err = imp.ImportFiles(ctx, []string{path}, Options{Company: company, Reset: true})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Deleted)
	assert.Equal(t, 2, res.Imported, "accounts recreated after reset")
	assert.Equal(t, 0, res.Skipped)

	root, err := s.GetAccount(ctx, "Despesas - DC")
	require.NoError(t, err)
	assert.True(t, root.IsRoot(), "roots survive a reset")
}

func TestReset_RecordsFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := store.NewMockStore(ctrl)
	ctx := context.Background()

	root := model.Account{Name: "Root", Company: company}
	s.EXPECT().ListAccounts(ctx, store.AccountFilter{Company: company, Roots: true}).Return([]model.Account{root}, nil)
	s.EXPECT().GetAccount(ctx, "Root").Return(&root, nil)
	s.EXPECT().ListAccounts(ctx, store.AccountFilter{Company: company, Parent: "Root"}).Return([]model.Account{
		{Name: "X", ParentAccount: "Root", Company: company},
		{Name: "Y", ParentAccount: "Root", Company: company},
	}, nil)
	s.EXPECT().ListAccounts(ctx, store.AccountFilter{Company: company, Parent: "X"}).Return(nil, nil)
	s.EXPECT().ListAccounts(ctx, store.AccountFilter{Company: company, Parent: "Y"}).Return(nil, nil)
	s.EXPECT().Delete(ctx, store.DocAccount, "X", store.DeleteOptions{Force: true}).Return(errors.New("locked"))
	s.EXPECT().Delete(ctx, store.DocAccount, "Y", store.DeleteOptions{Force: true}).Return(nil)
	s.EXPECT().Commit().Return(nil)

	res, err := New(s).Reset(ctx, company)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Deleted)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "X: locked", res.Errors[0].Error())
}

func TestReset_CommitFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := store.NewMockStore(ctrl)
	ctx := context.Background()

	root := model.Account{Name: "Root", Company: company}
	s.EXPECT().ListAccounts(ctx, store.AccountFilter{Company: company, Roots: true}).Return([]model.Account{root}, nil)
	s.EXPECT().GetAccount(ctx, "Root").Return(&root, nil)
	s.EXPECT().ListAccounts(ctx, store.AccountFilter{Company: company, Parent: "Root"}).Return([]model.Account{
		{Name: "X", ParentAccount: "Root", Company: company},
	}, nil)
	s.EXPECT().ListAccounts(ctx, store.AccountFilter{Company: company, Parent: "X"}).Return(nil, nil)
	s.EXPECT().Delete(ctx, store.DocAccount, "X", store.DeleteOptions{Force: true}).Return(nil)
	s.EXPECT().Commit().Return(errors.New("database is locked"))

	res, err := New(s).Reset(ctx, company)
	require.Error(t, err)
	assert.Equal(t, 0, res.Deleted)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "X", res.Errors[0].Account)
	assert.ErrorContains(t, res.Errors[0], "database is locked")
}

func TestImportFiles_CommitFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := store.NewMockStore(ctrl)
	ctx := context.Background()
	path := writeFile(t, t.TempDir(), "chart.csv", "Account Name,Parent Account\nCustos Fixos,Despesas - DC\nAluguel,Custos Fixos\n")

	s.EXPECT().Exists(ctx, store.DocCompany, company).Return(true, nil)
	s.EXPECT().Exists(ctx, store.DocAccount, "Custos Fixos").Return(false, nil)
	s.EXPECT().Exists(ctx, store.DocAccount, "Despesas - DC").Return(true, nil)
	s.EXPECT().Exists(ctx, store.DocAccount, "Aluguel").Return(false, nil)
	s.EXPECT().Exists(ctx, store.DocAccount, "Custos Fixos").Return(true, nil)
	s.EXPECT().InsertAccount(ctx, gomock.Any()).Return(nil).Times(2)
	s.EXPECT().Commit().Return(errors.New("database is locked"))

	res, err := New(s).ImportFiles(ctx, []string{path}, Options{Company: company})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "committing")
	assert.Equal(t, 0, res.Imported)
	assert.Empty(t, res.Created)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, RowError{File: path, Row: 2, Account: "Custos Fixos", Err: err}, res.Errors[0])
	assert.Equal(t, "Aluguel", res.Errors[1].Account)
	assert.Equal(t, 3, res.Errors[1].Row)
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.XLSX", "")
	writeFile(t, dir, "a.csv", "")
	writeFile(t, dir, "readme.md", "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.csv"), 0o755))

	got, err := Expand([]string{dir, "missing.csv"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.XLSX"), "missing.csv"}, got)
}
