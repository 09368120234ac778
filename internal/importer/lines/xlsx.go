package lines

import (
	"fmt"
	"io"
	"slices"

	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

// ItemsSheet is read in preference to the first sheet when present.
const ItemsSheet = "Items"

// XLSXParser reads line items from an Excel workbook.
type XLSXParser struct{}

func NewXLSX() *XLSXParser {
	return &XLSXParser{}
}

func (p *XLSXParser) Parse(r io.Reader) ([]invoice.CreateParams, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	sheet := sheets[0]
	if slices.Contains(sheets, ItemsSheet) {
		sheet = ItemsSheet
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	return parseRows(rows)
}
