package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

//go:embed templates/invoice.html
var templateFS embed.FS

var invoiceTemplate = template.Must(template.ParseFS(templateFS, "templates/invoice.html"))

// HTML writes the printable invoice page.
func HTML(w io.Writer, inv *invoice.Invoice, f Formatter) error {
	if err := invoiceTemplate.Execute(w, newDocument(inv, f, Formatter.Money)); err != nil {
		return fmt.Errorf("rendering invoice %s: %w", inv.InvoiceNumber, err)
	}

	return nil
}
