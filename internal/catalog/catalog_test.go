package catalog_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/invoicer/internal/catalog"
)

func TestLookup(t *testing.T) {
	type args struct {
		category string
		name     string
	}

	type testCase struct {
		name      string
		args      args
		wantFound bool
		wantPrice int64
	}

	tests := []testCase{
		{
			name:      "InCategory",
			args:      args{category: catalog.CategorySoaps, name: "Maxi Light Beauty Soap (3.8oz / 108g)"},
			wantFound: true,
			wantPrice: 700,
		},
		{
			name:      "AnyCategory",
			args:      args{name: "Carotone Black Spot Corrector Serum B.S.C. (30ml)"},
			wantFound: true,
			wantPrice: 3500,
		},
		{
			name: "WrongCategory",
			args: args{category: catalog.CategoryCreams, name: "Maxi Light Beauty Soap (3.8oz / 108g)"},
		},
		{
			name: "Unknown",
			args: args{name: "Nope"},
		},
		{
			name: "Empty",
			args: args{category: catalog.CategorySoaps},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := catalog.Lookup(tt.args.category, tt.args.name)

			assert.Equal(t, tt.wantFound, found)

			if tt.wantFound {
				assert.True(t, got.Price.Equal(decimal.NewFromInt(tt.wantPrice)))
			}
		})
	}
}

func TestCategories_UniqueNames(t *testing.T) {
	cats := catalog.Categories()
	assert.Len(t, cats, 4)

	for _, c := range cats {
		seen := make(map[string]bool)

		for _, p := range c.Products {
			assert.False(t, seen[p.Name], "duplicate %q in %s", p.Name, c.Key)
			seen[p.Name] = true
		}
	}
}

func TestCategories_ReturnsCopy(t *testing.T) {
	cats := catalog.Categories()
	cats[0].Products[0].Name = "changed"

	again, ok := catalog.CategoryByKey(cats[0].Key)
	assert.True(t, ok)
	assert.NotEqual(t, "changed", again.Products[0].Name)
}
