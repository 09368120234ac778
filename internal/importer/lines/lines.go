// Package lines reads spreadsheets that hold one invoice line item per row.
// Rows sharing an invoice number form one invoice; its header fields are
// taken from the first of them.
package lines

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

const (
	colNumber    = "invoice_number"
	colDate      = "date"
	colCustomer  = "customer_name"
	colPhone     = "customer_phone"
	colAddress   = "customer_address"
	colProduct   = "product"
	colQuantity  = "quantity"
	colUnitPrice = "unit_price"
	colTax       = "tax"
	colNotes     = "notes"
)

var required = []string{colNumber, colCustomer, colProduct, colQuantity, colUnitPrice}

// aliases maps normalised header text to a column.
var aliases = map[string]string{
	"invoice_number":   colNumber,
	"invoice_no":       colNumber,
	"invoice":          colNumber,
	"number":           colNumber,
	"date":             colDate,
	"invoice_date":     colDate,
	"created_at":       colDate,
	"customer_name":    colCustomer,
	"customer":         colCustomer,
	"client":           colCustomer,
	"customer_phone":   colPhone,
	"phone":            colPhone,
	"customer_address": colAddress,
	"address":          colAddress,
	"product":          colProduct,
	"product_name":     colProduct,
	"item":             colProduct,
	"quantity":         colQuantity,
	"qty":              colQuantity,
	"unit_price":       colUnitPrice,
	"price":            colUnitPrice,
	"tax":              colTax,
	"tax_rate":         colTax,
	"notes":            colNotes,
}

var dateLayouts = []string{
	time.RFC3339,
	time.DateTime,
	time.DateOnly,
	"02 Jan 2006",
	"02/01/2006",
}

// normalizeHeader lowercases h and joins its words with underscores.
func normalizeHeader(h string) string {
	words := strings.FieldsFunc(strings.ToLower(h), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	return strings.Join(words, "_")
}

// colIndex maps column keys to their index in the row.
type colIndex map[string]int

// detectHeader returns the first row holding every required column.
func detectHeader(rows [][]string) (colIndex, int, bool) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			if key, ok := aliases[normalizeHeader(cell)]; ok {
				if _, seen := cols[key]; !seen {
					cols[key] = i
				}
			}
		}

		if hasRequired(cols) {
			return cols, rowIdx, true
		}
	}

	return nil, 0, false
}

func hasRequired(cols colIndex) bool {
	for _, key := range required {
		if _, ok := cols[key]; !ok {
			return false
		}
	}

	return true
}

// parseRows groups the data rows into invoices.
func parseRows(rows [][]string) ([]invoice.CreateParams, error) {
	cols, headerIdx, ok := detectHeader(rows)
	if !ok {
		return nil, fmt.Errorf("no header found: expected columns %s", strings.Join(required, ", "))
	}

	var params []*invoice.CreateParams

	byNumber := make(map[string]*invoice.CreateParams)

	for i, row := range rows[headerIdx+1:] {
		rowNum := headerIdx + i + 2 // 1-based, skipping header

		number := cols.value(row, colNumber)
		product := cols.value(row, colProduct)

		if number == "" && product == "" {
			continue
		}

		if number == "" {
			return nil, fmt.Errorf("row %d: missing invoice number", rowNum)
		}

		it, err := parseItem(cols, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		cp, ok := byNumber[number]
		if !ok {
			cp, err = parseHeader(cols, row, number)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", rowNum, err)
			}

			byNumber[number] = cp
			params = append(params, cp)
		}

		cp.Items = append(cp.Items, it)
	}

	out := make([]invoice.CreateParams, len(params))
	for i, cp := range params {
		if err := cp.Validate(); err != nil {
			return nil, fmt.Errorf("invoice %s: %w", cp.InvoiceNumber, err)
		}

		out[i] = *cp
	}

	return out, nil
}

func parseHeader(cols colIndex, row []string, number string) (*invoice.CreateParams, error) {
	cp := &invoice.CreateParams{
		InvoiceNumber:   number,
		CustomerName:    cols.value(row, colCustomer),
		CustomerPhone:   cols.value(row, colPhone),
		CustomerAddress: cols.value(row, colAddress),
		Notes:           cols.value(row, colNotes),
		Tax:             decimal.Zero,
	}

	if s := cols.value(row, colTax); s != "" {
		tax, err := parseAmount(strings.TrimSuffix(s, "%"))
		if err != nil {
			return nil, fmt.Errorf("invalid tax %q", s)
		}

		cp.Tax = tax
	}

	if s := cols.value(row, colDate); s != "" {
		t, ok := parseDate(s)
		if !ok {
			return nil, fmt.Errorf("invalid date %q", s)
		}

		cp.CreatedAt = t
	}

	return cp, nil
}

func parseItem(cols colIndex, row []string) (invoice.LineItem, error) {
	product := cols.value(row, colProduct)
	if product == "" {
		return invoice.LineItem{}, fmt.Errorf("missing product")
	}

	qtyText := cols.value(row, colQuantity)

	qty, err := strconv.Atoi(qtyText)
	if err != nil || qty <= 0 {
		return invoice.LineItem{}, fmt.Errorf("invalid quantity %q", qtyText)
	}

	priceText := cols.value(row, colUnitPrice)

	price, err := parseAmount(priceText)
	if err != nil {
		return invoice.LineItem{}, fmt.Errorf("invalid unit price %q", priceText)
	}

	return invoice.LineItem{
		ID:          uuid.NewString(),
		ProductName: product,
		Quantity:    qty,
		UnitPrice:   price,
		Total:       invoice.LineTotal(qty, price),
	}, nil
}

// parseAmount reads amounts such as "₦12,500.00" or "NGN 850".
func parseAmount(s string) (decimal.Decimal, error) {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '.' || r == '-' {
			return r
		}

		return -1
	}, s)

	return decimal.NewFromString(clean)
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// value safely gets a trimmed cell value from a row.
func (c colIndex) value(row []string, key string) string {
	idx, ok := c[key]
	if !ok || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
