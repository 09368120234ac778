// Package settings keeps the company details stamped onto new invoices.
package settings

import (
	"context"
	"fmt"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/kv"
)

// Key is where the company details live in the key-value store.
const Key = "companyInfo"

// DefaultName is used until company details are saved.
const DefaultName = "Your Company"

func Default() invoice.CompanyInfo {
	return invoice.CompanyInfo{Name: DefaultName}
}

type Store struct {
	kv kv.Store
}

func New(store kv.Store) *Store {
	return &Store{kv: store}
}

func key(scope string) string {
	if scope == "" {
		return Key
	}

	return kv.Key("user", scope, Key)
}

// Get returns the saved company details for scope, or Default when none were saved.
// An empty scope is the single local profile.
func (s *Store) Get(ctx context.Context, scope string) (invoice.CompanyInfo, error) {
	var info invoice.CompanyInfo

	found, err := s.kv.Get(ctx, key(scope), &info)
	if err != nil {
		return invoice.CompanyInfo{}, fmt.Errorf("loading company info: %w", err)
	}

	if !found {
		return Default(), nil
	}

	return info, nil
}

// Save overwrites the company details for scope.
func (s *Store) Save(ctx context.Context, scope string, info invoice.CompanyInfo) error {
	if err := s.kv.Set(ctx, key(scope), info, 0); err != nil {
		return fmt.Errorf("saving company info: %w", err)
	}

	return nil
}
