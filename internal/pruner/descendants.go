package pruner

import (
	"context"
	"errors"
	"fmt"

	"github.com/cleared-dev/acctree/internal/model"
	"github.com/cleared-dev/acctree/internal/store"
)

// FindDescendants returns every account below root within company, each
// account listed after all of its own descendants. The root itself is not
// included. A leaf root yields an empty slice.
func FindDescendants(ctx context.Context, s store.Store, root, company string) ([]model.Account, error) {
	acct, err := resolveRoot(ctx, s, root, company)
	if err != nil {
		return nil, err
	}
	return descendants(ctx, s, *acct)
}

func resolveRoot(ctx context.Context, s store.Store, name, company string) (*model.Account, error) {
	acct, err := s.GetAccount(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	if acct.Company != company {
		return nil, fmt.Errorf("%w: %q in company %q", ErrNotFound, name, company)
	}
	return acct, nil
}

// descendants walks depth-first and appends in post-order. Reaching an
// account twice means the parent links form a loop; the walk stops there.
func descendants(ctx context.Context, s store.Store, root model.Account) ([]model.Account, error) {
	visited := map[string]bool{root.Name: true}
	var out []model.Account

	var walk func(parent string) error
	walk = func(parent string) error {
		children, err := s.ListAccounts(ctx, store.AccountFilter{Company: root.Company, Parent: parent})
		if err != nil {
			return fmt.Errorf("listing children of %q: %w", parent, err)
		}
		for _, child := range children {
			if visited[child.Name] {
				return &CycleError{Account: child.Name}
			}
			visited[child.Name] = true

			if err := walk(child.Name); err != nil {
				return err
			}
			out = append(out, child)
		}
		return nil
	}

	if err := walk(root.Name); err != nil {
		return nil, err
	}
	return out, nil
}
