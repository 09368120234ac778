package importer

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/MrJamesThe3rd/invoicer/internal/encoding"
	"github.com/MrJamesThe3rd/invoicer/internal/importer/legacy"
	"github.com/MrJamesThe3rd/invoicer/internal/importer/lines"
	"github.com/MrJamesThe3rd/invoicer/internal/importer/rows"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

type Service struct {
	importers map[Format]Importer
}

func NewService() *Service {
	return &Service{
		importers: map[Format]Importer{
			FormatLegacy: legacy.New(),
			FormatRows:   rows.New(),
			FormatCSV:    lines.NewCSV(),
			FormatXLSX:   lines.NewXLSX(),
		},
	}
}

// binary formats are passed to their parser without charset decoding.
var binary = map[Format]bool{FormatXLSX: true}

// Formats lists the supported formats.
func (s *Service) Formats() []Format {
	return []Format{FormatLegacy, FormatRows, FormatCSV, FormatXLSX}
}

func (s *Service) Import(format Format, r io.Reader) ([]invoice.CreateParams, error) {
	imp, ok := s.importers[format]
	if !ok {
		return nil, fmt.Errorf("unknown format: %s", format)
	}

	if !binary[format] {
		utf8r, err := encoding.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("detect encoding: %w", err)
		}

		slog.Debug("decoding import", "format", format, "charset", utf8r.Charset)

		r = utf8r
	}

	params, err := imp.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", format, err)
	}

	return params, nil
}
