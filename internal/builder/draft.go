// Package builder assembles invoices from catalog products before they are stored.
package builder

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoicer/internal/catalog"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

// Draft is an invoice being composed. Totals are derived on demand.
type Draft struct {
	ID              uuid.UUID          `json:"id"`
	CustomerName    string             `json:"customer_name"`
	CustomerPhone   string             `json:"customer_phone"`
	CustomerAddress string             `json:"customer_address"`
	Notes           string             `json:"notes"`
	Tax             decimal.Decimal    `json:"tax"`
	Items           []invoice.LineItem `json:"items"`
}

func NewDraft() *Draft {
	return &Draft{ID: uuid.New(), Tax: decimal.Zero}
}

// AddItem appends a line for the named catalog product. It reports false and
// leaves the draft alone when the product is unknown or quantity is not positive.
func (d *Draft) AddItem(category, productName string, quantity int) (invoice.LineItem, bool) {
	if quantity <= 0 {
		return invoice.LineItem{}, false
	}

	prod, ok := catalog.Lookup(category, productName)
	if !ok {
		return invoice.LineItem{}, false
	}

	it := invoice.LineItem{
		ID:          uuid.NewString(),
		ProductName: prod.Name,
		Quantity:    quantity,
		UnitPrice:   prod.Price,
		Total:       invoice.LineTotal(quantity, prod.Price),
	}
	d.Items = append(d.Items, it)

	return it, true
}

// UpdateItem replaces the quantity of one line and recomputes only its total.
func (d *Draft) UpdateItem(itemID string, quantity int) bool {
	if quantity <= 0 {
		return false
	}

	i := d.indexOf(itemID)
	if i < 0 {
		return false
	}

	d.Items[i].Quantity = quantity
	d.Items[i].Total = invoice.LineTotal(quantity, d.Items[i].UnitPrice)

	return true
}

func (d *Draft) RemoveItem(itemID string) bool {
	i := d.indexOf(itemID)
	if i < 0 {
		return false
	}

	d.Items = slices.Delete(d.Items, i, i+1)

	return true
}

func (d *Draft) indexOf(itemID string) int {
	return slices.IndexFunc(d.Items, func(it invoice.LineItem) bool { return it.ID == itemID })
}

// SetTax sets the tax percentage.
func (d *Draft) SetTax(tax decimal.Decimal) error {
	if tax.IsNegative() || tax.GreaterThan(decimal.NewFromInt(100)) {
		return &ValidationError{Msg: "tax must be between 0 and 100"}
	}

	d.Tax = tax

	return nil
}

func (d *Draft) Totals() invoice.Totals {
	return invoice.ComputeTotals(d.Items, d.Tax)
}

// ParseQuantity accepts only positive whole numbers.
func ParseQuantity(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, false
	}

	return n, true
}

// ParseTax reads a percentage. Blank input means no tax.
func ParseTax(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return decimal.Zero, nil
	}

	tax, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &ValidationError{Msg: fmt.Sprintf("invalid tax %q", s)}
	}

	if tax.IsNegative() || tax.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, &ValidationError{Msg: "tax must be between 0 and 100"}
	}

	return tax, nil
}
