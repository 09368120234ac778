package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

type Response struct {
	ID              uuid.UUID            `json:"id"`
	InvoiceNumber   string               `json:"invoice_number"`
	CustomerName    string               `json:"customer_name"`
	CustomerPhone   string               `json:"customer_phone"`
	CustomerAddress string               `json:"customer_address"`
	Items           []invoice.LineItem   `json:"items"`
	Subtotal        decimal.Decimal      `json:"subtotal"`
	Tax             decimal.Decimal      `json:"tax"`
	TaxAmount       decimal.Decimal      `json:"tax_amount"`
	TotalAmount     decimal.Decimal      `json:"total_amount"`
	CompanyInfo     *invoice.CompanyInfo `json:"company_info,omitempty"`
	Notes           string               `json:"notes,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

func ToResponse(inv *invoice.Invoice) Response {
	items := inv.Items
	if items == nil {
		items = []invoice.LineItem{}
	}

	return Response{
		ID:              inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerName:    inv.CustomerName,
		CustomerPhone:   inv.CustomerPhone,
		CustomerAddress: inv.CustomerAddress,
		Items:           items,
		Subtotal:        inv.Subtotal,
		Tax:             inv.Tax,
		TaxAmount:       inv.TaxAmount,
		TotalAmount:     inv.TotalAmount,
		CompanyInfo:     inv.CompanyInfo,
		Notes:           inv.Notes,
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
	}
}

func ToResponseList(invs []*invoice.Invoice) []Response {
	resp := make([]Response, len(invs))
	for i, inv := range invs {
		resp[i] = ToResponse(inv)
	}

	return resp
}

type statsResponse struct {
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
	Average decimal.Decimal `json:"average"`
	Recent  []Response      `json:"recent"`
}

func toStatsResponse(s invoice.Summary) statsResponse {
	return statsResponse{
		Count:   s.Count,
		Revenue: s.Revenue,
		Average: s.Average,
		Recent:  ToResponseList(s.Recent),
	}
}
