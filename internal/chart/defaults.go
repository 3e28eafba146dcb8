package chart

import "github.com/cleared-dev/acctree/internal/model"

// DefaultRoots returns the five root group accounts every company starts
// with. Names carry the company abbreviation, e.g. "Expenses - DC".
func DefaultRoots(company, abbr string) []model.Account {
	roots := []struct {
		name     string
		rootType model.RootType
	}{
		{"Application of Funds (Assets)", model.RootTypeAsset},
		{"Source of Funds (Liabilities)", model.RootTypeLiability},
		{"Equity", model.RootTypeEquity},
		{"Income", model.RootTypeIncome},
		{"Expenses", model.RootTypeExpense},
	}

	out := make([]model.Account, len(roots))
	for i, r := range roots {
		name := r.name
		if abbr != "" {
			name += " - " + abbr
		}
		out[i] = model.Account{
			Name:        name,
			AccountName: r.name,
			IsGroup:     true,
			RootType:    r.rootType,
			Company:     company,
		}
	}
	return out
}
