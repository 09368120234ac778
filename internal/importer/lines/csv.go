package lines

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

// sniffSize bounds how much of the file is inspected to pick a delimiter.
const sniffSize = 1024

// CSVParser reads comma or semicolon separated line items.
type CSVParser struct{}

func NewCSV() *CSVParser {
	return &CSVParser{}
}

// Parse expects UTF-8 input.
func (p *CSVParser) Parse(r io.Reader) ([]invoice.CreateParams, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	return parseRows(rows)
}

// delimiter picks ';' when it outnumbers ',' in the leading bytes.
func delimiter(data []byte) rune {
	sample := data[:min(len(data), sniffSize)]

	if bytes.Count(sample, []byte(";")) > bytes.Count(sample, []byte(",")) {
		return ';'
	}

	return ','
}
