// Package legacy reads the camelCase invoice list that older clients kept in
// browser local storage under the "invoices" key.
package legacy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

// StorageKey is the local storage key the list was kept under.
const StorageKey = "invoices"

type Item struct {
	ID          string          `json:"id"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Total       decimal.Decimal `json:"total"`
}

type CompanyInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// Invoice is one entry of the legacy list. Its aggregates were computed with
// floating point, so they are checked rather than trusted.
type Invoice struct {
	ID              string          `json:"id"`
	InvoiceNumber   string          `json:"invoiceNumber"`
	CustomerName    string          `json:"customerName"`
	CustomerPhone   string          `json:"customerPhone"`
	CustomerAddress string          `json:"customerAddress"`
	Items           []Item          `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Tax             decimal.Decimal `json:"tax"`
	TaxAmount       decimal.Decimal `json:"taxAmount"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Date            time.Time       `json:"date"`
	CompanyInfo     *CompanyInfo    `json:"companyInfo"`
	Notes           string          `json:"notes"`
}

type Parser struct{}

func New() *Parser {
	return &Parser{}
}

// Parse accepts the list itself or a dump of the whole local storage, in
// which the list is a JSON string under StorageKey.
func (p *Parser) Parse(r io.Reader) ([]invoice.CreateParams, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	list, err := decodeList(bytes.TrimSpace(data))
	if err != nil {
		return nil, err
	}

	params := make([]invoice.CreateParams, 0, len(list))

	for i, li := range list {
		cp, err := Convert(li)
		if err != nil {
			return nil, fmt.Errorf("invoice #%d %s: %w", i+1, li.InvoiceNumber, err)
		}

		params = append(params, cp)
	}

	return params, nil
}

func decodeList(data []byte) ([]Invoice, error) {
	if len(data) == 0 {
		return nil, errors.New("empty input")
	}

	var list []Invoice

	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("decode invoice list: %w", err)
		}
	case '{':
		var storage map[string]json.RawMessage
		if err := json.Unmarshal(data, &storage); err != nil {
			return nil, fmt.Errorf("decode storage dump: %w", err)
		}

		raw, ok := storage[StorageKey]
		if !ok {
			return nil, fmt.Errorf("storage dump has no %q key", StorageKey)
		}

		// local storage only holds strings, so the list is usually JSON inside a string
		var inner string
		if err := json.Unmarshal(raw, &inner); err == nil {
			raw = json.RawMessage(inner)
		}

		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("decode invoice list: %w", err)
		}
	default:
		return nil, errors.New("expected a JSON array or object")
	}

	return list, nil
}

// Convert maps a legacy invoice onto the canonical create params.
func Convert(li Invoice) (invoice.CreateParams, error) {
	items := make([]invoice.LineItem, len(li.Items))
	for i, it := range li.Items {
		id := it.ID
		if id == "" {
			id = uuid.NewString()
		}

		items[i] = invoice.LineItem{
			ID:          id,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total,
		}
	}

	stored := invoice.Invoice{
		Items:       items,
		Subtotal:    li.Subtotal,
		Tax:         li.Tax,
		TaxAmount:   li.TaxAmount,
		TotalAmount: li.TotalAmount,
	}
	if err := stored.CheckTotals(); err != nil {
		return invoice.CreateParams{}, fmt.Errorf("inconsistent totals: %w", err)
	}

	var company *invoice.CompanyInfo
	if li.CompanyInfo != nil {
		company = &invoice.CompanyInfo{
			Name:    li.CompanyInfo.Name,
			Address: li.CompanyInfo.Address,
			Phone:   li.CompanyInfo.Phone,
		}
	}

	cp := invoice.CreateParams{
		InvoiceNumber:   li.InvoiceNumber,
		CustomerName:    li.CustomerName,
		CustomerPhone:   li.CustomerPhone,
		CustomerAddress: li.CustomerAddress,
		Items:           items,
		Tax:             li.Tax,
		CompanyInfo:     company,
		Notes:           li.Notes,
		CreatedAt:       li.Date,
	}

	if err := cp.Validate(); err != nil {
		return invoice.CreateParams{}, err
	}

	return cp, nil
}
