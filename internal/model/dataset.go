package model

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Record maps a column name to its value. A nil value is null. The extractor
// leaves a field nil only when its label or value cell is not found; a found
// but empty cell is stored as "". Reading a workbook maps empty cells to nil,
// since xlsx cannot tell the two apart.
type Record map[string]*string

// NewRecord returns a record with every name present and null.
func NewRecord(names []string) Record {
	r := make(Record, len(names))
	for _, n := range names {
		r[n] = nil
	}
	return r
}

// Get returns the value for name and whether it is non-null.
func (r Record) Get(name string) (string, bool) {
	v := r[name]
	if v == nil {
		return "", false
	}
	return *v, true
}

// Clone returns a shallow copy of r; the string values themselves are shared
// and never modified.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Str returns a pointer to s, for building records.
func Str(s string) *string {
	return &s
}

// Dataset is an ordered set of records viewed as columns. Row order is the
// order in which records were appended.
type Dataset struct {
	Columns []string `json:"columns"`
	Rows    []Record `json:"rows"`
}

// NewDataset returns an empty dataset with the given columns.
func NewDataset(columns []string) *Dataset {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Dataset{Columns: cols}
}

// HasColumn reports whether name is one of the dataset's columns.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Append adds a row. Columns missing from r read as null.
func (d *Dataset) Append(r Record) {
	d.Rows = append(d.Rows, r)
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// Column returns the values of one column in row order.
func (d *Dataset) Column(name string) []*string {
	out := make([]*string, len(d.Rows))
	for i, r := range d.Rows {
		out[i] = r[name]
	}
	return out
}

// Strings returns the dataset as a string grid in column order, null as "".
func (d *Dataset) Strings() [][]string {
	out := make([][]string, len(d.Rows))
	for i, r := range d.Rows {
		row := make([]string, len(d.Columns))
		for j, c := range d.Columns {
			if v := r[c]; v != nil {
				row[j] = *v
			}
		}
		out[i] = row
	}
	return out
}

// Fold lower-cases s for case-insensitive comparison. Every label and answer
// comparison in the module goes through it.
func Fold(s string) string {
	return cases.Lower(language.Und).String(s)
}

// IsAffirmative reports whether v is a non-null "y" or "yes", ignoring case
// and surrounding whitespace.
func IsAffirmative(v *string) bool {
	if v == nil {
		return false
	}
	s := Fold(strings.TrimSpace(*v))
	return s == "y" || s == "yes"
}

// ContainsAffirmative reports whether v is non-null and contains "yes" or
// "y" anywhere, ignoring case. "Yes, partly" and "maybe" both count.
func ContainsAffirmative(v *string) bool {
	if v == nil {
		return false
	}
	return strings.Contains(Fold(*v), "y")
}
