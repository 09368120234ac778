// Package rows reads a JSON dump of invoice table rows, as produced by a
// table export of the hosted database the first clients wrote to.
package rows

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

// Item accepts both key styles seen in stored items.
type Item struct {
	ID           string           `json:"id"`
	ProductName  string           `json:"product_name"`
	ProductCamel string           `json:"productName"`
	Quantity     int              `json:"quantity"`
	UnitPrice    *decimal.Decimal `json:"unit_price"`
	UnitCamel    *decimal.Decimal `json:"unitPrice"`
}

type Row struct {
	InvoiceNumber   string               `json:"invoice_number"`
	CustomerName    string               `json:"customer_name"`
	CustomerPhone   string               `json:"customer_phone"`
	CustomerAddress string               `json:"customer_address"`
	Items           []Item               `json:"items"`
	Tax             decimal.Decimal      `json:"tax"`
	CompanyInfo     *invoice.CompanyInfo `json:"company_info"`
	Notes           string               `json:"notes"`
	CreatedAt       time.Time            `json:"created_at"`
}

type Parser struct{}

func New() *Parser {
	return &Parser{}
}

// Parse reads an array of rows. Stored aggregates are ignored and derived again.
func (p *Parser) Parse(r io.Reader) ([]invoice.CreateParams, error) {
	var rows []Row
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}

	params := make([]invoice.CreateParams, 0, len(rows))

	for i, row := range rows {
		cp := row.params()
		if err := cp.Validate(); err != nil {
			return nil, fmt.Errorf("row %d %s: %w", i+1, row.InvoiceNumber, err)
		}

		params = append(params, cp)
	}

	return params, nil
}

func (row Row) params() invoice.CreateParams {
	items := make([]invoice.LineItem, len(row.Items))
	for i, it := range row.Items {
		items[i] = it.lineItem()
	}

	return invoice.CreateParams{
		InvoiceNumber:   row.InvoiceNumber,
		CustomerName:    row.CustomerName,
		CustomerPhone:   row.CustomerPhone,
		CustomerAddress: row.CustomerAddress,
		Items:           items,
		Tax:             row.Tax,
		CompanyInfo:     row.CompanyInfo,
		Notes:           row.Notes,
		CreatedAt:       row.CreatedAt,
	}
}

func (it Item) lineItem() invoice.LineItem {
	li := invoice.LineItem{
		ID:          it.ID,
		ProductName: it.ProductName,
		Quantity:    it.Quantity,
	}

	if li.ID == "" {
		li.ID = uuid.NewString()
	}

	if li.ProductName == "" {
		li.ProductName = it.ProductCamel
	}

	switch {
	case it.UnitPrice != nil:
		li.UnitPrice = *it.UnitPrice
	case it.UnitCamel != nil:
		li.UnitPrice = *it.UnitCamel
	}

	li.Total = invoice.LineTotal(li.Quantity, li.UnitPrice)

	return li
}
