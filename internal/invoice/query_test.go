package invoice_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

func fixture() []*invoice.Invoice {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	return []*invoice.Invoice{
		{InvoiceNumber: "INV-100", CustomerName: "Ada Obi", TotalAmount: d("5000"), CreatedAt: base},
		{InvoiceNumber: "INV-200", CustomerName: "Bola Ade", TotalAmount: d("12000"), CreatedAt: base.Add(48 * time.Hour)},
		{InvoiceNumber: "INV-300", CustomerName: "Chidi", TotalAmount: d("5000"), CreatedAt: base.Add(24 * time.Hour)},
	}
}

func numbers(invs []*invoice.Invoice) []string {
	out := make([]string, len(invs))
	for i, inv := range invs {
		out[i] = inv.InvoiceNumber
	}

	return out
}

func TestFilter(t *testing.T) {
	type testCase struct {
		name string
		term string
		want []string
	}

	tests := []testCase{
		{name: "Blank", term: "  ", want: []string{"INV-100", "INV-200", "INV-300"}},
		{name: "CustomerCaseInsensitive", term: "ADE", want: []string{"INV-200"}},
		{name: "Number", term: "inv-3", want: []string{"INV-300"}},
		{name: "Substring", term: "o", want: []string{"INV-100", "INV-200"}},
		{name: "NoMatch", term: "zzz", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, numbers(invoice.Filter(fixture(), tt.term)))
		})
	}
}

func TestFilter_IsSubset(t *testing.T) {
	all := fixture()
	got := invoice.Filter(all, "a")

	for _, inv := range got {
		assert.Contains(t, all, inv)
	}
}

func TestSort(t *testing.T) {
	invs := fixture()

	assert.Equal(t, []string{"INV-200", "INV-300", "INV-100"}, numbers(invoice.Sort(invs, invoice.SortByDate)))
	// equal amounts keep their input order
	assert.Equal(t, []string{"INV-200", "INV-100", "INV-300"}, numbers(invoice.Sort(invs, invoice.SortByAmount)))
	assert.Equal(t, []string{"INV-100", "INV-200", "INV-300"}, numbers(invs), "input must not be reordered")
}

func TestParseSortBy(t *testing.T) {
	got, err := invoice.ParseSortBy("")
	require.NoError(t, err)
	assert.Equal(t, invoice.SortByDate, got)

	got, err = invoice.ParseSortBy("Amount")
	require.NoError(t, err)
	assert.Equal(t, invoice.SortByAmount, got)

	_, err = invoice.ParseSortBy("customer")
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		s := invoice.Summarize(nil)

		assert.Equal(t, 0, s.Count)
		assert.True(t, s.Revenue.IsZero())
		assert.True(t, s.Average.IsZero())
		assert.Empty(t, s.Recent)
	})

	t.Run("Stats", func(t *testing.T) {
		s := invoice.Summarize(fixture())

		assert.Equal(t, 3, s.Count)
		assert.True(t, d("22000").Equal(s.Revenue))
		assert.True(t, d("7333.33").Equal(s.Average), "average %s", s.Average)
		assert.Equal(t, []string{"INV-200", "INV-300", "INV-100"}, numbers(s.Recent))
	})

	t.Run("RecentCapped", func(t *testing.T) {
		var invs []*invoice.Invoice
		for i := range 8 {
			invs = append(invs, &invoice.Invoice{TotalAmount: d("1"), CreatedAt: time.Unix(int64(i), 0)})
		}

		s := invoice.Summarize(invs)
		assert.Len(t, s.Recent, invoice.RecentCount)
		assert.Equal(t, time.Unix(7, 0), s.Recent[0].CreatedAt)
	})
}
