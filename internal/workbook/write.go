package workbook

import (
	"io"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"

	"github.com/sells-group/review-cli/internal/model"
)

// Sheet names used in generated workbooks.
const (
	SheetExtracted  = "Extracted Data"
	SheetFile1      = "File 1 Data"
	SheetFile2      = "File 2 Data"
	SheetComparison = "Comparison"
)

const (
	minColWidth     = 10
	maxColWidth     = 255
	comparisonRowHt = 15
	highlightColor  = "FFCCCC"
	highlightValue  = "Yes"
)

// WriteExtraction writes ds as a single-sheet workbook.
func WriteExtraction(w io.Writer, ds *model.Dataset) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	if err := f.SetSheetName("Sheet1", SheetExtracted); err != nil {
		return eris.Wrap(err, "xlsx: rename sheet")
	}
	wrap, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true}})
	if err != nil {
		return eris.Wrap(err, "xlsx: wrap style")
	}
	if err := writeSheet(f, SheetExtracted, ds, wrap); err != nil {
		return err
	}

	return eris.Wrap(f.Write(w), "xlsx: write")
}

// WriteComparison writes the two input datasets and their joined dataset as
// three sheets. Rows of the joined sheet whose last cell is "Yes" are filled.
func WriteComparison(w io.Writer, left, right, joined *model.Dataset) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	if err := f.SetSheetName("Sheet1", SheetFile1); err != nil {
		return eris.Wrap(err, "xlsx: rename sheet")
	}
	for _, name := range []string{SheetFile2, SheetComparison} {
		if _, err := f.NewSheet(name); err != nil {
			return eris.Wrapf(err, "xlsx: add sheet %s", name)
		}
	}

	wrap, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true}})
	if err != nil {
		return eris.Wrap(err, "xlsx: wrap style")
	}
	fill, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{highlightColor}, Pattern: 1},
	})
	if err != nil {
		return eris.Wrap(err, "xlsx: fill style")
	}

	sheets := []struct {
		name string
		ds   *model.Dataset
	}{
		{SheetFile1, left},
		{SheetFile2, right},
		{SheetComparison, joined},
	}
	for _, s := range sheets {
		if err := writeSheet(f, s.name, s.ds, wrap); err != nil {
			return err
		}
		for r := 1; r <= s.ds.Len()+1; r++ {
			if err := f.SetRowHeight(s.name, r, comparisonRowHt); err != nil {
				return eris.Wrapf(err, "xlsx: row height %s", s.name)
			}
		}
	}

	if n := len(joined.Columns); n > 0 {
		last := joined.Columns[n-1]
		for i, rec := range joined.Rows {
			v, ok := rec.Get(last)
			if !ok || v != highlightValue {
				continue
			}
			from, _ := excelize.CoordinatesToCellName(1, i+2)
			to, _ := excelize.CoordinatesToCellName(n, i+2)
			if err := f.SetCellStyle(SheetComparison, from, to, fill); err != nil {
				return eris.Wrap(err, "xlsx: highlight row")
			}
		}
	}

	f.SetActiveSheet(0)
	return eris.Wrap(f.Write(w), "xlsx: write")
}

// writeSheet writes the header and rows of ds, wraps every cell and sizes
// each column to its longest value.
func writeSheet(f *excelize.File, sheet string, ds *model.Dataset, style int) error {
	if len(ds.Columns) == 0 {
		return nil
	}

	widths := make([]int, len(ds.Columns))
	set := func(col, row int, v string) error {
		if l := utf8.RuneCountInString(v); l > widths[col-1] {
			widths[col-1] = l
		}
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return eris.Wrap(err, "xlsx: cell name")
		}
		return eris.Wrapf(f.SetCellStr(sheet, cell, v), "xlsx: set %s!%s", sheet, cell)
	}

	for j, c := range ds.Columns {
		if err := set(j+1, 1, c); err != nil {
			return err
		}
	}
	for i, rec := range ds.Rows {
		for j, c := range ds.Columns {
			v, ok := rec.Get(c)
			if !ok {
				continue
			}
			if err := set(j+1, i+2, v); err != nil {
				return err
			}
		}
	}

	last, err := excelize.CoordinatesToCellName(len(ds.Columns), ds.Len()+1)
	if err != nil {
		return eris.Wrap(err, "xlsx: cell name")
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return eris.Wrapf(err, "xlsx: style %s", sheet)
	}

	for j, w := range widths {
		col, err := excelize.ColumnNumberToName(j + 1)
		if err != nil {
			return eris.Wrap(err, "xlsx: column name")
		}
		width := w + 2
		width = max(width, minColWidth)
		width = min(width, maxColWidth)
		if err := f.SetColWidth(sheet, col, col, float64(width)); err != nil {
			return eris.Wrapf(err, "xlsx: column width %s", col)
		}
	}
	return nil
}
