package ngdp

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// ParseManifest parses a pipe-delimited NGDP manifest (the cdns and
// versions documents) into one map per data row, preserving row order.
//
// Row 0 is the header; each cell is either a bare name or "NAME!TYPE:SIZE",
// and only the text before the first "!" is kept as the column name. Data
// rows are zipped positionally against the header. A row with fewer cells
// than the header has its missing trailing columns padded with "", so every
// row exposes the full column set.
func ParseManifest(data []byte) ([]map[string]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = '|'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	columns := make([]string, len(header))
	for i, cell := range header {
		name, _, _ := strings.Cut(cell, "!")
		columns[i] = name
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(columns))
		for i, name := range columns {
			if i < len(record) {
				row[name] = record[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
