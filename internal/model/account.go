package model

// RootType is the top-level ledger classification an account rolls up to.
type RootType string

const (
	RootTypeAsset     RootType = "Asset"
	RootTypeLiability RootType = "Liability"
	RootTypeEquity    RootType = "Equity"
	RootTypeIncome    RootType = "Income"
	RootTypeExpense   RootType = "Expense"
)

// Account is a node in a company's chart of accounts.
type Account struct {
	Name          string // unique identifier
	AccountName   string
	ParentAccount string // "" = root
	IsGroup       bool
	AccountType   string
	RootType      RootType
	Company       string
	AccountNumber string
}

// IsRoot reports whether the account has no parent.
func (a Account) IsRoot() bool {
	return a.ParentAccount == ""
}

// Company owns a chart of accounts.
type Company struct {
	Name string
	Abbr string
}
