// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tabular reads and writes metadata tables as CSV. Columns other
// than the well-known Title/Abstract/DOI ones are carried opaquely and
// survive a read/write round trip unchanged.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/screening-engine/pkg/types"
)

// Well-known column names in the metadata table.
const (
	ColTitle    = "Title"
	ColAbstract = "Abstract"
	ColDOI      = "DOI"
)

// Table is an ordered metadata table: a header plus one MetadataRecord
// per row.
type Table struct {
	Columns []string
	Records []types.MetadataRecord

	// OverlongRows counts source rows that carried more cells than the
	// header names; the extra cells are dropped on read.
	OverlongRows int
}

// Read parses a CSV metadata table. The first row is the header; a UTF-8
// byte-order mark on the first cell is tolerated (spreadsheet exports add
// one). Rows shorter than the header are padded with empty fields; rows
// longer than the header lose the extra cells and are counted in
// OverlongRows. The header must contain a Title column.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("metadata table is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\uFEFF")

	hasTitle := false
	for _, col := range header {
		if col == ColTitle {
			hasTitle = true
			break
		}
	}
	if !hasTitle {
		return nil, fmt.Errorf("metadata table has no %s column", ColTitle)
	}

	t := &Table{Columns: header}
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", line, err)
		}

		if len(row) > len(header) {
			t.OverlongRows++
		}
		fields := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				fields[col] = row[i]
			} else {
				fields[col] = ""
			}
		}
		t.Records = append(t.Records, types.MetadataRecord{
			Title:    strings.TrimSpace(fields[ColTitle]),
			Abstract: strings.TrimSpace(fields[ColAbstract]),
			DOI:      strings.TrimSpace(fields[ColDOI]),
			Fields:   fields,
		})
	}
	return t, nil
}

// Write serializes the table as CSV. Newlines inside fields are flattened
// to spaces so every record stays on one physical line for review tools.
func Write(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	row := make([]string, len(t.Columns))
	for i, rec := range t.Records {
		for j, col := range t.Columns {
			row[j] = flatten(rec.Fields[col])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func flatten(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
