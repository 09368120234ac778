package render

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

const (
	pageWidth    = 210.0
	margin       = 15.0
	contentWidth = pageWidth - 2*margin
	// measureHeight is tall enough for any invoice during the sizing pass.
	measureHeight = 5000.0
)

// column widths of the items table
var cols = [4]float64{95, 25, 30, 30}

// PDFName is the download name of an invoice PDF.
func PDFName(inv *invoice.Invoice) string {
	return inv.InvoiceNumber + ".pdf"
}

// PDF writes a single-page PDF whose height fits the invoice content.
func PDF(w io.Writer, inv *invoice.Invoice, f Formatter) error {
	doc := newDocument(inv, f, Formatter.PlainMoney)

	height := layout(newPDF(measureHeight), doc) + margin

	pdf := newPDF(height)
	layout(pdf, doc)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf for %s: %w", inv.InvoiceNumber, err)
	}

	return nil
}

func newPDF(height float64) *gofpdf.Fpdf {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: pageWidth, Ht: height},
	})
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("Invoice", true)
	pdf.AddPage()

	return pdf
}

// layout draws doc and returns the y position below the last element.
func layout(pdf *gofpdf.Fpdf, doc document) float64 {
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	text := func(x, y, w, h float64, s, align string) {
		pdf.SetXY(x, y)
		pdf.CellFormat(w, h, tr(s), "", 0, align, false, 0, "")
	}

	// multi writes wrapped text and returns its height.
	multi := func(x, y, w, h float64, s, align string) float64 {
		if s == "" {
			return 0
		}

		pdf.SetXY(x, y)
		pdf.MultiCell(w, h, tr(s), "", align, false)

		return pdf.GetY() - y
	}

	rule := func(y float64) {
		pdf.SetDrawColor(229, 231, 235)
		pdf.Line(margin, y, pageWidth-margin, y)
	}

	half := contentWidth / 2
	y := margin

	// header
	pdf.SetFont("Arial", "B", 22)
	text(margin, y, half, 10, "INVOICE", "L")
	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(124, 58, 237)
	text(margin, y+11, half, 7, doc.Number, "L")
	pdf.SetTextColor(31, 41, 55)

	right := y
	pdf.SetFont("Arial", "B", 14)
	right += multi(margin+half, right, half, 7, doc.Company.Name, "R")
	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(107, 114, 128)
	right += multi(margin+half, right, half, 5, doc.Company.Address, "R")
	right += multi(margin+half, right, half, 5, doc.Company.Phone, "R")
	pdf.SetTextColor(31, 41, 55)

	y = max(y+18, right) + 6
	rule(y)
	y += 6

	// bill to
	pdf.SetFont("Arial", "B", 9)
	pdf.SetTextColor(107, 114, 128)
	text(margin, y, half, 5, "BILL TO", "L")
	pdf.SetFont("Arial", "", 10)
	text(margin+half, y, half, 5, "Invoice Date", "R")
	pdf.SetTextColor(31, 41, 55)
	pdf.SetFont("Arial", "B", 10)
	text(margin+half, y+5, half, 6, doc.Date, "R")

	left := y + 5
	pdf.SetFont("Arial", "B", 11)
	left += multi(margin, left, half, 6, doc.Customer.Name, "L")
	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(107, 114, 128)
	left += multi(margin, left, half, 5, doc.Customer.Phone, "L")
	left += multi(margin, left, half, 5, doc.Customer.Address, "L")
	pdf.SetTextColor(31, 41, 55)

	y = max(y+11, left) + 6
	rule(y)
	y += 6

	// items
	headers := [4]string{"Product", "Quantity", "Unit Price", "Total"}
	aligns := [4]string{"L", "R", "R", "R"}

	pdf.SetFont("Arial", "B", 10)

	x := margin
	for i, h := range headers {
		text(x, y, cols[i], 8, h, aligns[i])
		x += cols[i]
	}

	y += 8
	rule(y)

	pdf.SetFont("Arial", "", 10)

	for _, it := range doc.Items {
		lines := pdf.SplitLines([]byte(tr(it.Product)), cols[0])
		rowHeight := float64(max(len(lines), 1))*5 + 3

		pdf.SetXY(margin, y+1.5)
		pdf.MultiCell(cols[0], 5, tr(it.Product), "", "L", false)

		x = margin + cols[0]
		for i, v := range []string{it.Quantity, it.UnitPrice, it.Total} {
			text(x, y+1.5, cols[i+1], 5, v, "R")
			x += cols[i+1]
		}

		y += rowHeight
		rule(y)
	}

	// totals
	y += 6
	labelX := pageWidth - margin - 80

	pdf.SetFont("Arial", "", 10)
	text(labelX, y, 40, 6, "Subtotal", "L")
	text(labelX+40, y, 40, 6, doc.Subtotal, "R")
	y += 7
	text(labelX, y, 40, 6, "Tax ("+doc.TaxRate+")", "L")
	text(labelX+40, y, 40, 6, doc.TaxAmount, "R")
	y += 8
	pdf.SetFont("Arial", "B", 13)
	text(labelX, y, 30, 8, "Total", "L")
	pdf.SetTextColor(124, 58, 237)
	text(labelX+30, y, 50, 8, doc.Total, "R")
	pdf.SetTextColor(31, 41, 55)
	y += 10

	// notes
	if doc.Notes != "" {
		y += 4
		rule(y)
		y += 5
		pdf.SetFont("Arial", "B", 9)
		pdf.SetTextColor(107, 114, 128)
		text(margin, y, contentWidth, 5, "NOTES", "L")
		pdf.SetTextColor(31, 41, 55)
		pdf.SetFont("Arial", "", 10)
		y += 6 + multi(margin, y+6, contentWidth, 5, doc.Notes, "L")
	}

	return y
}
