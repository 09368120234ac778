package invoice

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

type SortBy string

const (
	SortByDate   SortBy = "date"
	SortByAmount SortBy = "amount"
)

// ParseSortBy maps a query value to a SortBy. Empty means date.
func ParseSortBy(s string) (SortBy, error) {
	switch SortBy(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortByDate:
		return SortByDate, nil
	case SortByAmount:
		return SortByAmount, nil
	default:
		return "", fmt.Errorf("unknown sort %q", s)
	}
}

type Query struct {
	Search string
	SortBy SortBy
}

// Filter keeps invoices whose customer name or number contains term, ignoring case.
// A blank term keeps everything.
func Filter(invs []*Invoice, term string) []*Invoice {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return slices.Clone(invs)
	}

	out := make([]*Invoice, 0, len(invs))

	for _, inv := range invs {
		if strings.Contains(strings.ToLower(inv.CustomerName), term) ||
			strings.Contains(strings.ToLower(inv.InvoiceNumber), term) {
			out = append(out, inv)
		}
	}

	return out
}

// Sort returns a sorted copy: newest first for date, largest first for amount.
func Sort(invs []*Invoice, by SortBy) []*Invoice {
	out := slices.Clone(invs)

	switch by {
	case SortByAmount:
		slices.SortStableFunc(out, func(a, b *Invoice) int {
			return b.TotalAmount.Cmp(a.TotalAmount)
		})
	default:
		slices.SortStableFunc(out, func(a, b *Invoice) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}

	return out
}

// RecentCount is how many invoices Summarize lists as recent.
const RecentCount = 5

type Summary struct {
	Count   int
	Revenue decimal.Decimal
	Average decimal.Decimal
	Recent  []*Invoice
}

func Summarize(invs []*Invoice) Summary {
	s := Summary{Count: len(invs), Revenue: decimal.Zero, Average: decimal.Zero}

	for _, inv := range invs {
		s.Revenue = s.Revenue.Add(inv.TotalAmount)
	}

	if s.Count > 0 {
		s.Average = s.Revenue.Div(decimal.NewFromInt(int64(s.Count))).Round(2)
	}

	recent := Sort(invs, SortByDate)
	if len(recent) > RecentCount {
		recent = recent[:RecentCount]
	}

	s.Recent = recent

	return s
}
