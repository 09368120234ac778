package settings_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/kv"
	"github.com/MrJamesThe3rd/invoicer/internal/settings"
)

func TestStore_GetDefault(t *testing.T) {
	s := settings.New(kv.NewMemory())

	got, err := s.Get(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, invoice.CompanyInfo{Name: "Your Company"}, got)
}

func TestStore_SaveLastWriteWins(t *testing.T) {
	s := settings.New(kv.NewMemory())
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "", invoice.CompanyInfo{Name: "Glow", Phone: "0803"}))
	require.NoError(t, s.Save(ctx, "", invoice.CompanyInfo{Name: "Glow Naturals", Address: "Ikeja"}))

	got, err := s.Get(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, invoice.CompanyInfo{Name: "Glow Naturals", Address: "Ikeja"}, got)
}

func TestStore_ScopesAreIsolated(t *testing.T) {
	s := settings.New(kv.NewMemory())
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "alice", invoice.CompanyInfo{Name: "Alice Soaps"}))

	got, err := s.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, settings.DefaultName, got.Name)

	got, err = s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice Soaps", got.Name)
}

func TestStore_FilePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	ctx := context.Background()

	require.NoError(t, settings.New(kv.NewFile(path)).Save(ctx, "", invoice.CompanyInfo{Name: "Glow"}))

	got, err := settings.New(kv.NewFile(path)).Get(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "Glow", got.Name)
}
