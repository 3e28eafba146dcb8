package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/acctree/internal/model"
)

func TestReadRows_HeaderMapping(t *testing.T) {
	in := "Notes, account_number ,ACCOUNT NAME,Parent Account\n" +
		"ignored,5110,  Rent ,Fixed Costs\n" +
		"x,,Travel\n"

	rows, err := ReadRows(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, Row{Line: 2, AccountName: "Rent", ParentAccount: "Fixed Costs", AccountNumber: "5110"}, rows[0])
	assert.Equal(t, Row{Line: 3, AccountName: "Travel"}, rows[1], "short rows leave missing columns blank")
}

func TestReadRows_MissingAccountName(t *testing.T) {
	_, err := ReadRows(strings.NewReader("Parent Account,Account Type\nA,Bank\n"))
	assert.ErrorIs(t, err, ErrMissingHeader)
}

func TestReadRows_Empty(t *testing.T) {
	rows, err := ReadRows(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadRows_Malformed(t *testing.T) {
	_, err := ReadRows(strings.NewReader("Account Name\n\"unterminated\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading chart CSV")
}

func TestRoundTrip(t *testing.T) {
	rows := []Row{
		{AccountName: "Despesas - DC", RootType: string(model.RootTypeExpense)},
		{AccountName: "Manutenção", ParentAccount: "Despesas - DC", AccountType: "Expense Account", AccountNumber: "5200"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRows(&buf, rows))
	assert.True(t, strings.HasPrefix(buf.String(), "Account Name,Parent Account,Account Type,Account Number,Root Type\n"))

	got, err := ReadRows(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i := range rows {
		rows[i].Line = i + 2
	}
	assert.Equal(t, rows, got)
}

func TestReadFile_Windows1252WithBOMHeader(t *testing.T) {
	dir := t.TempDir()

	latin := filepath.Join(dir, "latin.csv")
	require.NoError(t, os.WriteFile(latin, []byte("Account Name,Parent Account\nManuten\xe7\xe3o,Despesas - DC\n"), 0o644))
	rows, err := ReadFile(latin)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Manutenção", rows[0].AccountName)

	bom := filepath.Join(dir, "bom.csv")
	require.NoError(t, os.WriteFile(bom, []byte("\xef\xbb\xbfAccount Name\nRent\n"), 0o644))
	rows, err = ReadFile(bom)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Rent", rows[0].AccountName)
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadFile_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Account Name", "Parent Account", "Account Number"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Despesas - DC"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"Rent", "Despesas - DC", 5110}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	rows, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{Line: 2, AccountName: "Despesas - DC"}, rows[0])
	assert.Equal(t, Row{Line: 3, AccountName: "Rent", ParentAccount: "Despesas - DC", AccountNumber: "5110"}, rows[1])
}

func TestSortHierarchy(t *testing.T) {
	rows := []Row{
		{AccountName: "D", ParentAccount: "B"},
		{AccountName: "C", ParentAccount: "A"},
		{AccountName: "B", ParentAccount: "A"},
		{AccountName: "Orphan", ParentAccount: "Elsewhere"},
		{AccountName: "A"},
	}

	got := SortHierarchy(rows)
	require.Len(t, got, len(rows))

	names := make([]string, len(got))
	pos := make(map[string]int, len(got))
	for i, r := range got {
		names[i] = r.AccountName
		pos[r.AccountName] = i
	}
	assert.Equal(t, []string{"A", "C", "B", "D", "Orphan"}, names)
	for _, r := range got {
		if p, ok := pos[r.ParentAccount]; ok {
			assert.Less(t, p, pos[r.AccountName])
		}
	}
}

func TestFromAccount(t *testing.T) {
	row := FromAccount(model.Account{
		Name:          "Rent - DC",
		AccountName:   "Rent",
		ParentAccount: "Fixed Costs - DC",
		AccountType:   "Expense Account",
		AccountNumber: "5110",
		RootType:      model.RootTypeExpense,
	})
	assert.Equal(t, Row{AccountName: "Rent - DC", ParentAccount: "Fixed Costs - DC", AccountType: "Expense Account", AccountNumber: "5110", RootType: "Expense"}, row)
}

func TestDefaultRoots(t *testing.T) {
	roots := DefaultRoots("DM-CASA", "DC")
	require.Len(t, roots, 5)

	types := map[model.RootType]bool{}
	for _, r := range roots {
		assert.True(t, r.IsRoot())
		assert.True(t, r.IsGroup)
		assert.Equal(t, "DM-CASA", r.Company)
		assert.True(t, strings.HasSuffix(r.Name, " - DC"), r.Name)
		types[r.RootType] = true
	}
	assert.Len(t, types, 5)
	assert.Equal(t, "Expenses - DC", roots[4].Name)

	assert.Equal(t, "Expenses", DefaultRoots("X", "")[4].Name)
}
