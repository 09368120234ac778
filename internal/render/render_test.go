package render_test

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/render"
)

func sample(items int, notes string) *invoice.Invoice {
	inv := &invoice.Invoice{
		InvoiceNumber:   "INV-1700000000000",
		CustomerName:    "<b>Ada</b> Obi",
		CustomerPhone:   "not a phone",
		CustomerAddress: "12 Allen Avenue\nIkeja",
		Tax:             decimal.RequireFromString("7.5"),
		CompanyInfo:     &invoice.CompanyInfo{Name: "Glow Naturals", Address: "Lekki"},
		Notes:           notes,
		CreatedAt:       time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC),
	}

	for i := range items {
		inv.Items = append(inv.Items, invoice.LineItem{
			ID:          strconv.Itoa(i),
			ProductName: "Carotone 3-in-1 Crème Pot/Jar (Brightening)",
			Quantity:    i + 1,
			UnitPrice:   decimal.NewFromInt(6500),
		})
	}

	inv.ApplyTotals()

	return inv
}

func TestFormatter_Money(t *testing.T) {
	f := render.DefaultFormatter

	tests := map[string]string{
		"0":           "₦0.00",
		"0.5":         "₦0.50",
		"999":         "₦999.00",
		"12500":       "₦12,500.00",
		"1234567.891": "₦1,234,567.89",
		"-4200":       "₦-4,200.00",
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, f.Money(decimal.RequireFromString(in)))
		})
	}

	assert.Equal(t, "NGN 12,500.00", f.PlainMoney(decimal.NewFromInt(12500)))
}

func TestFormatter_Phone(t *testing.T) {
	f := render.DefaultFormatter

	assert.Equal(t, "", f.Phone("  "))
	assert.Equal(t, "call me", f.Phone("call me"))
	assert.Equal(t, "12", f.Phone("12"))
	assert.True(t, strings.HasPrefix(f.Phone("08031234567"), "+234 "), f.Phone("08031234567"))
}

func TestHTML(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, render.HTML(&buf, sample(2, "Thank you!"), render.DefaultFormatter))

	out := buf.String()
	assert.Contains(t, out, "<title>INV-1700000000000</title>")
	assert.Contains(t, out, "&lt;b&gt;Ada&lt;/b&gt; Obi")
	assert.Contains(t, out, "Glow Naturals")
	assert.Contains(t, out, "09 Mar 2024")
	assert.Contains(t, out, "Tax (7.5%)")
	assert.Contains(t, out, "₦19,500.00")
	assert.Contains(t, out, "₦20,962.50")
	assert.Contains(t, out, "Thank you!")
}

func TestHTML_DefaultsAndOptionalBlocks(t *testing.T) {
	inv := sample(1, "")
	inv.CompanyInfo = nil

	var buf bytes.Buffer

	require.NoError(t, render.HTML(&buf, inv, render.DefaultFormatter))

	out := buf.String()
	assert.Contains(t, out, "Your Company")
	assert.NotContains(t, out, `<p class="label">Notes</p>`)
}

var mediaBox = regexp.MustCompile(`/MediaBox \[0 0 ([\d.]+) ([\d.]+)\]`)

func pageHeight(t *testing.T, pdf []byte) float64 {
	t.Helper()

	m := mediaBox.FindAllSubmatch(pdf, -1)
	require.NotEmpty(t, m)

	var h float64

	for _, sm := range m {
		v, err := strconv.ParseFloat(string(sm[2]), 64)
		require.NoError(t, err)

		h = max(h, v)
	}

	return h
}

func TestPDF(t *testing.T) {
	var short, long bytes.Buffer

	require.NoError(t, render.PDF(&short, sample(1, ""), render.DefaultFormatter))
	require.NoError(t, render.PDF(&long, sample(12, "Delivered to the front desk.\nPaid in cash."), render.DefaultFormatter))

	assert.True(t, bytes.HasPrefix(short.Bytes(), []byte("%PDF-")))
	assert.Equal(t, 1, bytes.Count(long.Bytes(), []byte("/Type /Page\n")))

	shortHeight, longHeight := pageHeight(t, short.Bytes()), pageHeight(t, long.Bytes())
	assert.Greater(t, longHeight, shortHeight)
	assert.Less(t, shortHeight, 842.0, "short invoices are shorter than A4")
}

func TestPDFName(t *testing.T) {
	assert.Equal(t, "INV-42.pdf", render.PDFName(&invoice.Invoice{InvoiceNumber: "INV-42"}))
}
