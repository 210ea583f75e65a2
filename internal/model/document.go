package model

// Table is a grid of trimmed cell texts, row-major. Rows may have different
// lengths.
type Table struct {
	Rows [][]string `json:"rows"`
}

// Cell returns the text at (row, col) and whether that position exists.
func (t Table) Cell(row, col int) (string, bool) {
	if row < 0 || row >= len(t.Rows) {
		return "", false
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return "", false
	}
	return r[col], true
}

// Document is the table content of one source file, tables in document order.
type Document struct {
	Name   string  `json:"name"`
	Tables []Table `json:"tables"`
}
