package importer

import (
	"io"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

// Format names an import file layout.
type Format string

const (
	// FormatLegacy is the camelCase invoice list older clients kept in local storage.
	FormatLegacy Format = "legacy"
	// FormatRows is a JSON dump of invoice table rows.
	FormatRows Format = "rows"
	// FormatCSV and FormatXLSX hold one line item per row.
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

type Importer interface {
	Parse(r io.Reader) ([]invoice.CreateParams, error)
}
