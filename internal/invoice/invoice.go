package invoice

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("invoice not found")
	ErrUnauthenticated = errors.New("not signed in")
	ErrDuplicateNumber = errors.New("invoice number already exists")
)

// ValidationError reports invoice input that cannot be stored.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NumberPrefix starts every generated invoice number.
const NumberPrefix = "INV-"

var (
	hundred = decimal.NewFromInt(100)

	// totalsTolerance absorbs rounding in rows written with floating point.
	totalsTolerance = decimal.RequireFromString("0.005")
)

// LineItem is one product line. Total is always Quantity * UnitPrice.
type LineItem struct {
	ID          string          `json:"id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

// CompanyInfo is the issuer block printed on an invoice.
type CompanyInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// Invoice is a stored invoice. Aggregates are derived from Items and Tax.
type Invoice struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	InvoiceNumber   string
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	Items           []LineItem
	Subtotal        decimal.Decimal
	Tax             decimal.Decimal // percentage, 0-100
	TaxAmount       decimal.Decimal
	TotalAmount     decimal.Decimal
	CompanyInfo     *CompanyInfo
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Totals struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// LineTotal returns quantity * unitPrice.
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// ComputeTotals sums the item totals and applies tax as a percentage of the subtotal.
func ComputeTotals(items []LineItem, tax decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Total)
	}

	taxAmount := subtotal.Mul(tax).Div(hundred)

	return Totals{
		Subtotal:  subtotal,
		TaxAmount: taxAmount,
		Total:     subtotal.Add(taxAmount),
	}
}

// ApplyTotals recomputes every line total and the invoice aggregates.
func (inv *Invoice) ApplyTotals() {
	for i := range inv.Items {
		inv.Items[i].Total = LineTotal(inv.Items[i].Quantity, inv.Items[i].UnitPrice)
	}

	t := ComputeTotals(inv.Items, inv.Tax)
	inv.Subtotal = t.Subtotal
	inv.TaxAmount = t.TaxAmount
	inv.TotalAmount = t.Total
}

// CheckTotals reports the first aggregate that disagrees with the items and tax.
func (inv *Invoice) CheckTotals() error {
	if inv.Tax.IsNegative() || inv.Tax.GreaterThan(hundred) {
		return fmt.Errorf("tax %s out of range", inv.Tax)
	}

	for _, it := range inv.Items {
		if it.Quantity <= 0 {
			return fmt.Errorf("item %q: quantity must be positive", it.ProductName)
		}

		if !within(it.Total, LineTotal(it.Quantity, it.UnitPrice)) {
			return fmt.Errorf("item %q: total %s != %d x %s", it.ProductName, it.Total, it.Quantity, it.UnitPrice)
		}
	}

	t := ComputeTotals(inv.Items, inv.Tax)

	switch {
	case !within(inv.Subtotal, t.Subtotal):
		return fmt.Errorf("subtotal %s != %s", inv.Subtotal, t.Subtotal)
	case !within(inv.TaxAmount, t.TaxAmount):
		return fmt.Errorf("tax amount %s != %s", inv.TaxAmount, t.TaxAmount)
	case !within(inv.TotalAmount, t.Total):
		return fmt.Errorf("total %s != %s", inv.TotalAmount, t.Total)
	}

	return nil
}

func within(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(totalsTolerance)
}

// NewNumber returns the invoice number for an invoice created at t.
func NewNumber(t time.Time) string {
	return NumberPrefix + strconv.FormatInt(t.UnixMilli(), 10)
}
