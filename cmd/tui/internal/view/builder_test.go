package view

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/builder"
	"github.com/MrJamesThe3rd/invoicer/internal/catalog"
	"github.com/MrJamesThe3rd/invoicer/internal/client"
	"github.com/MrJamesThe3rd/invoicer/internal/render"
)

const soap = "Carotone Brightening Soap (190g / 6.7oz)"

func press(t *testing.T, m BuilderModel, key string) BuilderModel {
	t.Helper()

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})

	bm, ok := next.(BuilderModel)
	require.True(t, ok)

	return bm
}

func TestBuilderModel_ItemKeys(t *testing.T) {
	m := NewBuilderModel(&auth.User{ID: uuid.New()}, nil, nil, render.DefaultFormatter)

	m.picker.SelectCategory(catalog.CategorySoaps)
	m.picker.SelectProduct(soap)
	require.True(t, m.picker.Add(m.draft))
	m.refreshTable()

	m = press(t, m, "+")
	require.Len(t, m.draft.Items, 1)
	assert.Equal(t, 2, m.draft.Items[0].Quantity)
	assert.Equal(t, "1700", m.draft.Items[0].Total.String())

	m = press(t, m, "-")
	m = press(t, m, "-")
	assert.Equal(t, 1, m.draft.Items[0].Quantity, "quantity never drops below one")

	m = press(t, m, "s")
	assert.ErrorIs(t, m.err, builder.ErrCustomerNameRequired)
	assert.Equal(t, builderStateItems, m.state)

	m = press(t, m, "x")
	assert.Empty(t, m.draft.Items)
	assert.Contains(t, m.View(), "Total: ₦0.00")
}

func TestBuilderModel_SuggestFillsBlankContact(t *testing.T) {
	m := NewBuilderModel(&auth.User{ID: uuid.New()}, nil, nil, render.DefaultFormatter)
	m.draft.CustomerName = "Ada Obi"
	m.draft.CustomerAddress = "12 Marina"

	next, _ := m.Update(suggestMsg{client: &clientFixture})
	m = next.(BuilderModel)

	assert.Equal(t, "+2348012345678", m.draft.CustomerPhone)
	assert.Equal(t, "12 Marina", m.draft.CustomerAddress, "typed values are kept")
}

var clientFixture = client.Client{Name: "Ada Obi", Phone: "+2348012345678", Address: "4 Broad St"}
