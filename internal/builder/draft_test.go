package builder_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invoicer/internal/builder"
	"github.com/MrJamesThe3rd/invoicer/internal/catalog"
)

const (
	soap   = "Carotone Brightening Soap (190g / 6.7oz)"
	lotion = "Bio Claire Lightening Body Lotion (12.1 fl.oz / 350ml)"
)

func TestDraft_AddItem(t *testing.T) {
	type args struct {
		category string
		product  string
		quantity int
	}

	type testCase struct {
		name   string
		args   args
		wantOK bool
	}

	tests := []testCase{
		{name: "Valid", args: args{catalog.CategorySoaps, soap, 3}, wantOK: true},
		{name: "AnyCategory", args: args{"", lotion, 1}, wantOK: true},
		{name: "EmptyProduct", args: args{catalog.CategorySoaps, "", 1}},
		{name: "UnknownProduct", args: args{catalog.CategorySoaps, "Mystery bar", 1}},
		{name: "WrongCategory", args: args{catalog.CategoryCreams, soap, 1}},
		{name: "ZeroQuantity", args: args{catalog.CategorySoaps, soap, 0}},
		{name: "NegativeQuantity", args: args{catalog.CategorySoaps, soap, -2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := builder.NewDraft()
			d.AddItem(catalog.CategorySerumsOils, "Carotone 3-in-1 Huile Serum Collagen (65ml)", 1)
			before := append(d.Items[:0:0], d.Items...)

			it, ok := d.AddItem(tt.args.category, tt.args.product, tt.args.quantity)
			assert.Equal(t, tt.wantOK, ok)

			if !tt.wantOK {
				assert.Equal(t, before, d.Items)
				return
			}

			require.Len(t, d.Items, len(before)+1)
			assert.Equal(t, it, d.Items[len(d.Items)-1])
			assert.NotEmpty(t, it.ID)
			assert.True(t, it.UnitPrice.Mul(decimal.NewFromInt(int64(tt.args.quantity))).Equal(it.Total))
		})
	}
}

func TestDraft_UpdateAndRemove(t *testing.T) {
	d := builder.NewDraft()
	a, _ := d.AddItem(catalog.CategorySoaps, soap, 1)
	b, _ := d.AddItem(catalog.CategoryBodyLotions, lotion, 2)

	require.True(t, d.UpdateItem(a.ID, 4))
	assert.True(t, decimal.NewFromInt(3400).Equal(d.Items[0].Total))
	assert.Equal(t, b, d.Items[1], "other items untouched")

	assert.False(t, d.UpdateItem(a.ID, 0))
	assert.False(t, d.UpdateItem("missing", 2))

	require.True(t, d.RemoveItem(a.ID))
	assert.Equal(t, []string{b.ID}, []string{d.Items[0].ID})
	assert.False(t, d.RemoveItem(a.ID))
}

func TestDraft_Totals(t *testing.T) {
	d := builder.NewDraft()

	got := d.Totals()
	assert.True(t, got.Total.IsZero(), "empty draft totals to zero")

	d.AddItem(catalog.CategorySoaps, soap, 2)         // 1700
	d.AddItem(catalog.CategoryBodyLotions, lotion, 1) // 4500
	require.NoError(t, d.SetTax(decimal.NewFromInt(10)))

	got = d.Totals()
	assert.True(t, decimal.NewFromInt(6200).Equal(got.Subtotal))
	assert.True(t, decimal.NewFromInt(620).Equal(got.TaxAmount))
	assert.True(t, decimal.NewFromInt(6820).Equal(got.Total))
	assert.True(t, got.Subtotal.Add(got.TaxAmount).Equal(got.Total))

	assert.Error(t, d.SetTax(decimal.NewFromInt(101)))
	assert.True(t, decimal.NewFromInt(10).Equal(d.Tax))
}

func TestParseQuantity(t *testing.T) {
	type testCase struct {
		in     string
		want   int
		wantOK bool
	}

	tests := []testCase{
		{in: "1", want: 1, wantOK: true},
		{in: " 12 ", want: 12, wantOK: true},
		{in: "0"},
		{in: "-3"},
		{in: "1.5"},
		{in: "abc"},
		{in: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := builder.ParseQuantity(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTax(t *testing.T) {
	got, err := builder.ParseTax("")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	got, err = builder.ParseTax("7.5%")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("7.5").Equal(got))

	_, err = builder.ParseTax("ten")
	assert.Error(t, err)

	_, err = builder.ParseTax("150")
	var verr *builder.ValidationError
	assert.ErrorAs(t, err, &verr)
}
