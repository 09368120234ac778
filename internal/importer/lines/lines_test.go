package lines_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/invoicer/internal/importer/lines"
)

func TestCSV_GroupsRowsByInvoice(t *testing.T) {
	csv := `Invoice Number,Date,Customer,Phone,Address,Product,Qty,Unit Price,Tax (%),Notes
INV-1,2024-03-01,Ada Obi,08031234567,12 Allen Ave,Carotone Soap,2,850,7.5,Paid cash
INV-1,,,,,Bio Claire Lotion,1,"4,500.00",,
INV-2,02/03/2024,Bola Ade,,,Carotone Soap,3,₦850,,
`

	params, err := lines.NewCSV().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, params, 2)

	first := params[0]
	assert.Equal(t, "INV-1", first.InvoiceNumber)
	assert.Equal(t, "Ada Obi", first.CustomerName)
	assert.Equal(t, "08031234567", first.CustomerPhone)
	assert.Equal(t, "12 Allen Ave", first.CustomerAddress)
	assert.Equal(t, "Paid cash", first.Notes)
	assert.True(t, decimal.RequireFromString("7.5").Equal(first.Tax))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), first.CreatedAt)
	require.Len(t, first.Items, 2)
	assert.Equal(t, "Carotone Soap", first.Items[0].ProductName)
	assert.Equal(t, 2, first.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(1700).Equal(first.Items[0].Total))
	assert.True(t, decimal.NewFromInt(4500).Equal(first.Items[1].UnitPrice))
	assert.NotEmpty(t, first.Items[0].ID)

	second := params[1]
	assert.Equal(t, "INV-2", second.InvoiceNumber)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), second.CreatedAt)
	assert.True(t, decimal.Zero.Equal(second.Tax))
	require.Len(t, second.Items, 1)
	assert.True(t, decimal.NewFromInt(2550).Equal(second.Items[0].Total))
}

func TestCSV_SemicolonAndPreamble(t *testing.T) {
	csv := `Exported from shop;2024
invoice_number;customer_name;product_name;quantity;unit_price
INV-9;Chika;Soap;1;850
;;;;
`

	params, err := lines.NewCSV().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, params, 1)

	assert.Equal(t, "Chika", params[0].CustomerName)
	assert.True(t, decimal.Zero.Equal(params[0].Tax))
	assert.True(t, params[0].CreatedAt.IsZero())
}

func TestCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		wantErr string
	}{
		{
			name:    "NoHeader",
			csv:     "a,b,c\n1,2,3\n",
			wantErr: "no header found",
		},
		{
			name:    "Empty",
			csv:     "",
			wantErr: "no header found",
		},
		{
			name:    "MissingNumber",
			csv:     "Invoice,Customer,Product,Qty,Price\n,Ada,Soap,1,850\n",
			wantErr: "row 2: missing invoice number",
		},
		{
			name:    "MissingProduct",
			csv:     "Invoice,Customer,Product,Qty,Price\nINV-1,Ada,,1,850\n",
			wantErr: "row 2: missing product",
		},
		{
			name:    "BadQuantity",
			csv:     "Invoice,Customer,Product,Qty,Price\nINV-1,Ada,Soap,two,850\n",
			wantErr: `invalid quantity "two"`,
		},
		{
			name:    "ZeroQuantity",
			csv:     "Invoice,Customer,Product,Qty,Price\nINV-1,Ada,Soap,0,850\n",
			wantErr: `invalid quantity "0"`,
		},
		{
			name:    "BadPrice",
			csv:     "Invoice,Customer,Product,Qty,Price\nINV-1,Ada,Soap,1,free\n",
			wantErr: `invalid unit price "free"`,
		},
		{
			name:    "BadDate",
			csv:     "Invoice,Date,Customer,Product,Qty,Price\nINV-1,yesterday,Ada,Soap,1,850\n",
			wantErr: `invalid date "yesterday"`,
		},
		{
			name:    "TaxOutOfRange",
			csv:     "Invoice,Customer,Product,Qty,Price,Tax\nINV-1,Ada,Soap,1,850,150\n",
			wantErr: "invoice INV-1: tax 150 out of range",
		},
		{
			name:    "MissingCustomer",
			csv:     "Invoice,Customer,Product,Qty,Price\nINV-1,,Soap,1,850\n",
			wantErr: "missing customer name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := lines.NewCSV().Parse(strings.NewReader(tt.csv))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestXLSX_PrefersItemsSheet(t *testing.T) {
	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })

	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"not", "items"}))

	_, err := f.NewSheet(lines.ItemsSheet)
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow(lines.ItemsSheet, "A1", &[]any{"Invoice Number", "Customer", "Product", "Quantity", "Unit Price"}))
	require.NoError(t, f.SetSheetRow(lines.ItemsSheet, "A2", &[]any{"INV-7", "Ada", "Soap", "4", "850"}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	params, err := lines.NewXLSX().Parse(buf)
	require.NoError(t, err)
	require.Len(t, params, 1)

	assert.Equal(t, "INV-7", params[0].InvoiceNumber)
	require.Len(t, params[0].Items, 1)
	assert.True(t, decimal.NewFromInt(3400).Equal(params[0].Items[0].Total))
}

func TestXLSX_FirstSheet(t *testing.T) {
	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })

	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"invoice_number", "customer_name", "product", "qty", "price"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"INV-8", "Bola", "Lotion", "1", "4500"}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	params, err := lines.NewXLSX().Parse(buf)
	require.NoError(t, err)
	require.Len(t, params, 1)
	assert.Equal(t, "Bola", params[0].CustomerName)
}

func TestXLSX_NotAWorkbook(t *testing.T) {
	_, err := lines.NewXLSX().Parse(strings.NewReader("plain text"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open workbook")
}
