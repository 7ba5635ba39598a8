// Package importer loads solvent tables (.csv, .xlsx) into storage and the catalog.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/mixingcompass/internal/models"
	"github.com/hyperjump/mixingcompass/internal/solventid"
)

// Column headers, matched case-insensitively.
const (
	colName      = "solvent"
	colDeltaD    = "delta_d"
	colDeltaP    = "delta_p"
	colDeltaH    = "delta_h"
	colCAS       = "cas"
	colSMILES    = "smiles"
	colMolarVol  = "mvol"
	colSourceURL = "source_url"
)

var requiredColumns = []string{colName, colDeltaD, colDeltaP, colDeltaH}

// Table is the cleaned content of one solvent file.
type Table struct {
	Source   string
	Solvents []*models.Solvent
	// Skipped describes every dropped row.
	Skipped []string
}

// ParseFile parses a .csv or .xlsx solvent table.
func ParseFile(path string) (*Table, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return ParseCSV(bytes.NewReader(content), path)
	case ".xlsx":
		return ParseXLSX(bytes.NewReader(content), path)
	default:
		return nil, fmt.Errorf("unsupported solvent table format %q", ext)
	}
}

// ParseCSV parses a comma-separated solvent table whose first row is the header.
func ParseCSV(r io.Reader, source string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV %s: %w", source, err)
	}
	return parseRows(rows, source)
}

// ParseXLSX parses the first sheet of a workbook that carries a solvent header row.
func ParseXLSX(r io.Reader, source string) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open Excel %s: %w", source, err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("get rows for sheet %q: %w", sheet, err)
		}
		if len(rows) > 0 && headerIndex(rows[0])[colName] >= 0 {
			return parseRows(rows, source)
		}
	}
	return nil, fmt.Errorf("%s: no sheet has a %q column", source, "Solvent")
}

// headerIndex maps each known column to its position, -1 when absent.
func headerIndex(header []string) map[string]int {
	idx := map[string]int{}
	for _, c := range []string{colName, colDeltaD, colDeltaP, colDeltaH, colCAS, colSMILES, colMolarVol, colSourceURL} {
		idx[c] = -1
	}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, known := idx[key]; known && idx[key] < 0 {
			idx[key] = i
		}
	}
	return idx
}

// parseRows cleans a header-first table: names are trimmed, rows without a
// name or with a negative or malformed HSP value are dropped, and only the
// first row of a duplicated name is kept. Blank HSP cells stay unknown.
func parseRows(rows [][]string, source string) (*Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: empty table", source)
	}
	idx := headerIndex(rows[0])
	for _, c := range requiredColumns {
		if idx[c] < 0 {
			return nil, fmt.Errorf("%s: missing column %q", source, c)
		}
	}

	t := &Table{Source: source}
	seen := make(map[string]struct{})
	for n, row := range rows[1:] {
		line := n + 2
		cell := func(col string) string {
			if i := idx[col]; i >= 0 && i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}

		name := strings.Join(strings.Fields(cell(colName)), " ")
		if name == "" {
			if strings.TrimSpace(strings.Join(row, "")) != "" {
				t.Skipped = append(t.Skipped, fmt.Sprintf("row %d: empty solvent name", line))
			}
			continue
		}
		key := solventid.Normalize(name)
		if _, dup := seen[key]; dup {
			t.Skipped = append(t.Skipped, fmt.Sprintf("row %d: duplicate solvent %q", line, name))
			continue
		}

		s := &models.Solvent{
			ID:         solventid.FromName(name),
			Name:       name,
			CAS:        cell(colCAS),
			SMILES:     cell(colSMILES),
			SourceURL:  cell(colSourceURL),
			SourceFile: source,
		}
		var err error
		if s.HSP.D, err = parseComponent(cell(colDeltaD)); err == nil {
			if s.HSP.P, err = parseComponent(cell(colDeltaP)); err == nil {
				s.HSP.H, err = parseComponent(cell(colDeltaH))
			}
		}
		if err != nil {
			t.Skipped = append(t.Skipped, fmt.Sprintf("row %d: %s: %v", line, name, err))
			continue
		}
		if mv, err := parseComponent(cell(colMolarVol)); err == nil && mv != nil && *mv > 0 {
			s.MolarVolume = mv
		}

		seen[key] = struct{}{}
		t.Solvents = append(t.Solvents, s)
	}
	return t, nil
}

// parseComponent parses a non-negative number; a blank cell is unknown (nil).
func parseComponent(v string) (*float64, error) {
	if v == "" || strings.EqualFold(v, "nan") {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", v)
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, fmt.Errorf("non-finite value %q", v)
	}
	if f < 0 {
		return nil, fmt.Errorf("negative value %g", f)
	}
	return &f, nil
}
