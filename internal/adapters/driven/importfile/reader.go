// Package importfile reads the periodic tabular order export. The whole
// file is ingested per sync call; there is no delta format. Columns are
// arbitrary, so each row becomes an ordered snapshot keyed by the header.
package importfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/meridian-labs/docket-cli/internal/core/domain"
	"github.com/meridian-labs/docket-cli/internal/core/ports/driven"
	"github.com/meridian-labs/docket-cli/internal/logger"
)

// Ensure Reader implements the interface.
var _ driven.RowSource = (*Reader)(nil)

// Reader reads order rows from a delimiter-separated export file.
type Reader struct {
	path      string
	separator rune
}

// Option configures a Reader.
type Option func(*Reader)

// WithSeparator overrides the field separator. Defaults to comma;
// exports from spreadsheet tools often use semicolons.
func WithSeparator(sep rune) Option {
	return func(r *Reader) { r.separator = sep }
}

// NewReader creates a reader for an export file.
func NewReader(path string, opts ...Option) *Reader {
	r := &Reader{path: path, separator: ','}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rows reads all rows as ordered snapshots. The first record is the
// header; short rows are padded, excess cells dropped.
func (r *Reader) Rows(ctx context.Context) ([]domain.RowData, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("opening import file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = r.separator
	reader.FieldsPerRecord = -1 // rows may be ragged
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading import file: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	rows := make([]domain.RowData, 0, len(records)-1)
	for _, record := range records[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if isBlank(record) {
			continue
		}

		row := make(domain.RowData, 0, len(header))
		for i, key := range header {
			if key == "" {
				continue
			}
			value := ""
			if i < len(record) {
				value = strings.TrimSpace(record[i])
			}
			row = append(row, domain.RowField{Key: key, Value: value})
		}
		rows = append(rows, row)
	}

	logger.Debug("Read %d rows from %s", len(rows), r.path)
	return rows, nil
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
