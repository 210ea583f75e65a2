// Package workbook reads and writes the xlsx workbooks exchanged with users:
// the extraction output and the three-sheet comparison report.
package workbook

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/review-cli/internal/model"
)

// ReadOptions selects the sheet holding the dataset.
type ReadOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
}

// ReadDataset reads a dataset from the xlsx file at path. The first row of
// the sheet is the header; empty cells are null.
func ReadDataset(path string, opts ReadOptions) (*model.Dataset, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}
	return fromFile(f, opts)
}

// ReadDatasetBytes reads a dataset from an in-memory xlsx file.
func ReadDatasetBytes(data []byte, opts ReadOptions) (*model.Dataset, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open binary")
	}
	return fromFile(f, opts)
}

func fromFile(f *xlsx.File, opts ReadOptions) (*model.Dataset, error) {
	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for _, row := range sheet.Rows {
		if row == nil {
			continue
		}
		rows = append(rows, rowToStrings(row))
	}
	return fromRows(rows), nil
}

// fromRows builds a dataset from a header row followed by data rows.
// Rows with no non-empty cell are dropped.
func fromRows(rows [][]string) *model.Dataset {
	if len(rows) == 0 {
		return model.NewDataset(nil)
	}

	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	header := make([]string, width)
	copy(header, rows[0])
	columns := headerNames(header)

	ds := model.NewDataset(columns)
	for _, r := range rows[1:] {
		if isBlank(r) {
			continue
		}
		rec := model.NewRecord(columns)
		for j, c := range columns {
			if j < len(r) && r[j] != "" {
				rec[c] = model.Str(r[j])
			}
		}
		ds.Append(rec)
	}
	return ds
}

// headerNames trims header cells, names blank ones "Unnamed: N" and
// suffixes repeats with ".1", ".2", ...
func headerNames(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = name + "." + strconv.Itoa(n+1)
		} else {
			seen[name] = 0
		}
		names[i] = name
	}
	return names
}

func isBlank(r []string) bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func getSheet(f *xlsx.File, opts ReadOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("xlsx: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	return f.Sheets[opts.SheetIndex], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		if cell == nil {
			continue
		}
		cells[j] = cell.String()
	}
	return cells
}
