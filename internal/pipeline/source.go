package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/dvloznov/finance-summary/internal/domain"
)

// ReadCSV parses a comma-separated source with a header row. Header names are
// normalized; later duplicates of a column are ignored. Short rows leave the
// missing cells null.
func ReadCSV(r io.Reader) (domain.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return domain.Table{}, fmt.Errorf("ReadCSV: empty source, no header row: %w", domain.ErrSchema)
	}
	if err != nil {
		return domain.Table{}, fmt.Errorf("ReadCSV: reading header: %w", err)
	}

	var table domain.Table
	positions := make([]int, 0, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		name := domain.NormalizeColumnName(h)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		table.Header = append(table.Header, name)
		positions = append(positions, i)
	}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Table{}, fmt.Errorf("ReadCSV: reading row %d: %w", len(table.Rows)+1, err)
		}

		row := make(domain.RawRow, len(table.Header))
		for j, col := range table.Header {
			if pos := positions[j]; pos < len(record) {
				v := record[pos]
				row[col] = &v
			} else {
				row[col] = nil
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// Load reads the source at uri: a local path or a gs://bucket/object URI.
// A missing source is reported as domain.ErrSourceNotFound.
func (e *Engine) Load(ctx context.Context, uri string) (domain.Table, error) {
	if strings.HasPrefix(uri, "gs://") {
		if e.Store == nil {
			return domain.Table{}, fmt.Errorf("Load: no object store configured for %s", uri)
		}
		data, err := e.Store.FetchFromGCS(ctx, uri)
		if err != nil {
			return domain.Table{}, fmt.Errorf("Load: %w", err)
		}
		return ReadCSV(bytes.NewReader(data))
	}

	f, err := os.Open(uri)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Table{}, fmt.Errorf("Load: %s: %w", uri, domain.ErrSourceNotFound)
	}
	if err != nil {
		return domain.Table{}, fmt.Errorf("Load: opening %s: %w", uri, err)
	}
	defer f.Close()

	return ReadCSV(f)
}
