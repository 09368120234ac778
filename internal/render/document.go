package render

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/settings"
)

type party struct {
	Name    string
	Address string
	Phone   string
}

type line struct {
	Product   string
	Quantity  string
	UnitPrice string
	Total     string
}

// document is an invoice with every value already formatted for output.
type document struct {
	Number    string
	Date      string
	Company   party
	Customer  party
	Items     []line
	Subtotal  string
	TaxRate   string
	TaxAmount string
	Total     string
	Notes     string
}

func newDocument(inv *invoice.Invoice, f Formatter, money func(Formatter, decimal.Decimal) string) document {
	company := settings.Default()
	if inv.CompanyInfo != nil {
		company = *inv.CompanyInfo
	}

	doc := document{
		Number:    inv.InvoiceNumber,
		Date:      f.Date(inv.CreatedAt),
		Company:   party{Name: company.Name, Address: company.Address, Phone: f.Phone(company.Phone)},
		Customer:  party{Name: inv.CustomerName, Address: inv.CustomerAddress, Phone: f.Phone(inv.CustomerPhone)},
		Subtotal:  money(f, inv.Subtotal),
		TaxRate:   f.Percent(inv.Tax),
		TaxAmount: money(f, inv.TaxAmount),
		Total:     money(f, inv.TotalAmount),
		Notes:     inv.Notes,
	}

	for _, it := range inv.Items {
		doc.Items = append(doc.Items, line{
			Product:   it.ProductName,
			Quantity:  strconv.Itoa(it.Quantity),
			UnitPrice: money(f, it.UnitPrice),
			Total:     money(f, it.Total),
		})
	}

	return doc
}
