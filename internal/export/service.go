package export

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/render"
)

const (
	SummaryName  = "summary.txt"
	WorkbookName = "invoices.xlsx"
	// PDFDir holds one PDF per exported invoice inside the archive.
	PDFDir = "invoices/"

	invoicesSheet = "Invoices"
	itemsSheet    = "Items"
)

// Item represents a single exported invoice with its path inside the archive.
type Item struct {
	Invoice  *invoice.Invoice
	FilePath string
}

// Service bundles invoices into a zip archive.
type Service struct {
	invoices  *invoice.Service
	formatter render.Formatter
	now       func() time.Time
}

func NewService(invoices *invoice.Service, f render.Formatter) *Service {
	return &Service{
		invoices:  invoices,
		formatter: f,
		now:       time.Now,
	}
}

// Export writes the invoices matching q to w as a zip archive holding their
// PDFs, a plain text summary and a workbook.
func (s *Service) Export(ctx context.Context, user *auth.User, q invoice.Query, w io.Writer) ([]Item, error) {
	invoices, err := s.invoices.Query(ctx, user, q)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}

	zw := zip.NewWriter(w)
	items := make([]Item, 0, len(invoices))

	for _, inv := range invoices {
		path := PDFDir + render.PDFName(inv)

		f, err := s.create(zw, path)
		if err != nil {
			return nil, err
		}

		if err := render.PDF(f, inv, s.formatter); err != nil {
			return nil, fmt.Errorf("rendering %s: %w", inv.InvoiceNumber, err)
		}

		items = append(items, Item{Invoice: inv, FilePath: path})
	}

	f, err := s.create(zw, SummaryName)
	if err != nil {
		return nil, err
	}

	if _, err := io.WriteString(f, s.GenerateSummary(items)); err != nil {
		return nil, fmt.Errorf("writing summary: %w", err)
	}

	f, err = s.create(zw, WorkbookName)
	if err != nil {
		return nil, err
	}

	if err := WriteWorkbook(f, invoices); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}

	return items, nil
}

func (s *Service) create(zw *zip.Writer, name string) (io.Writer, error) {
	f, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("adding %s: %w", name, err)
	}

	return f, nil
}

// GenerateSummary creates a plain text listing of the exported items.
func (s *Service) GenerateSummary(items []Item) string {
	var sb strings.Builder

	invoices := make([]*invoice.Invoice, len(items))

	for i, item := range items {
		inv := item.Invoice
		invoices[i] = inv

		sb.WriteString(fmt.Sprintf("* %s | %s | %s | %s | %s\n",
			s.formatter.Date(inv.CreatedAt),
			inv.InvoiceNumber,
			inv.CustomerName,
			s.formatter.Money(inv.TotalAmount),
			item.FilePath,
		))
	}

	sum := invoice.Summarize(invoices)

	sb.WriteString(fmt.Sprintf("\nInvoices: %d\nRevenue: %s\nAverage: %s\n",
		sum.Count,
		s.formatter.Money(sum.Revenue),
		s.formatter.Money(sum.Average),
	))

	return sb.String()
}

var (
	invoiceHeaders = []any{
		"Invoice Number", "Date", "Customer", "Phone", "Address",
		"Subtotal", "Tax (%)", "Tax Amount", "Total", "Notes",
	}
	// itemHeaders are understood by the line item importer, so an exported
	// workbook can be imported again.
	itemHeaders = []any{
		"Invoice Number", "Date", "Customer", "Phone", "Address",
		"Product", "Quantity", "Unit Price", "Line Total", "Tax (%)", "Notes",
	}
)

// WriteWorkbook writes one row per invoice to the Invoices sheet and one row
// per line item to the Items sheet.
func WriteWorkbook(w io.Writer, invoices []*invoice.Invoice) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", invoicesSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	if _, err := f.NewSheet(itemsSheet); err != nil {
		return fmt.Errorf("adding sheet: %w", err)
	}

	if err := f.SetSheetRow(invoicesSheet, "A1", &invoiceHeaders); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	if err := f.SetSheetRow(itemsSheet, "A1", &itemHeaders); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	itemRow := 2

	for i, inv := range invoices {
		date := inv.CreatedAt.Format(time.DateOnly)

		row := []any{
			inv.InvoiceNumber, date, inv.CustomerName, inv.CustomerPhone, inv.CustomerAddress,
			inv.Subtotal.InexactFloat64(), inv.Tax.InexactFloat64(), inv.TaxAmount.InexactFloat64(),
			inv.TotalAmount.InexactFloat64(), inv.Notes,
		}

		if err := f.SetSheetRow(invoicesSheet, cell(i+2), &row); err != nil {
			return fmt.Errorf("writing %s: %w", inv.InvoiceNumber, err)
		}

		for _, it := range inv.Items {
			row := []any{
				inv.InvoiceNumber, date, inv.CustomerName, inv.CustomerPhone, inv.CustomerAddress,
				it.ProductName, it.Quantity, it.UnitPrice.InexactFloat64(), it.Total.InexactFloat64(),
				inv.Tax.InexactFloat64(), inv.Notes,
			}

			if err := f.SetSheetRow(itemsSheet, cell(itemRow), &row); err != nil {
				return fmt.Errorf("writing %s items: %w", inv.InvoiceNumber, err)
			}

			itemRow++
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}

	return nil
}

func cell(row int) string {
	return fmt.Sprintf("A%d", row)
}
