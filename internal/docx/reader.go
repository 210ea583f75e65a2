// Package docx reads the tables of Office Open XML word-processing documents.
//
// Only what field extraction needs is decoded: the top-level tables of
// word/document.xml as grids of trimmed cell text. Merged cells are expanded
// onto the table grid, so a cell spanning two columns appears twice and a
// vertically merged cell repeats the text of the cell that starts the merge.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/review-cli/internal/model"
)

const (
	wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	documentPart  = "word/document.xml"
)

// ErrUnreadable is the root of every error returned for a file that is not a
// readable DOCX document.
var ErrUnreadable = eris.New("docx: unreadable document")

// Open reads the tables of the DOCX file at path.
func Open(path string) (*model.Document, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, unreadable(path, err)
	}
	defer zr.Close() //nolint:errcheck

	return parse(filepath.Base(path), &zr.Reader)
}

// Parse reads the tables of a DOCX document held in r.
func Parse(name string, r io.ReaderAt, size int64) (*model.Document, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, unreadable(name, err)
	}
	return parse(name, zr)
}

func parse(name string, zr *zip.Reader) (*model.Document, error) {
	var part *zip.File
	for _, f := range zr.File {
		if f.Name == documentPart {
			part = f
			break
		}
	}
	if part == nil {
		return nil, unreadable(name, eris.Errorf("missing %s", documentPart))
	}

	rc, err := part.Open()
	if err != nil {
		return nil, unreadable(name, err)
	}
	defer rc.Close() //nolint:errcheck

	tables, err := readTables(rc)
	if err != nil {
		return nil, unreadable(name, err)
	}
	return &model.Document{Name: name, Tables: tables}, nil
}

func unreadable(name string, cause error) error {
	return eris.Wrapf(ErrUnreadable, "%s: %v", name, cause)
}

// FileSource loads a document from disk.
type FileSource struct {
	Path string
}

// Name returns the file path.
func (s FileSource) Name() string { return s.Path }

// Load opens and parses the file. The context is not consulted; parsing a
// single document is bounded by its size.
func (s FileSource) Load(_ context.Context) (*model.Document, error) {
	return Open(s.Path)
}

// BytesSource loads a document already held in memory, such as an upload.
type BytesSource struct {
	Filename string
	Data     []byte
}

// Name returns the original file name.
func (s BytesSource) Name() string { return s.Filename }

// Load parses the in-memory document.
func (s BytesSource) Load(_ context.Context) (*model.Document, error) {
	return Parse(s.Filename, bytes.NewReader(s.Data), int64(len(s.Data)))
}

type vmerge int

const (
	vmergeNone vmerge = iota
	vmergeRestart
	vmergeContinue
)

type cellState struct {
	paragraphs []string
	para       strings.Builder
	inPara     bool
	span       int
	merge      vmerge
}

type tableState struct {
	rows [][]*cellState
}

func (t *tableState) cell() *cellState {
	if len(t.rows) == 0 {
		return nil
	}
	row := t.rows[len(t.rows)-1]
	if len(row) == 0 {
		return nil
	}
	return row[len(row)-1]
}

// readTables streams document.xml and returns its top-level tables.
func readTables(r io.Reader) ([]model.Table, error) {
	d := xml.NewDecoder(r)

	var (
		tables   []model.Table
		stack    []*tableState
		runDepth int
	)
	current := func() *cellState {
		if len(stack) == 0 {
			return nil
		}
		return stack[len(stack)-1].cell()
	}

	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "decode document.xml")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNamespace {
				// Alternate content, drawings, math and other vocabularies
				// may embed their own paragraphs.
				if err := d.Skip(); err != nil {
					return nil, eris.Wrap(err, "skip element")
				}
				continue
			}
			switch t.Name.Local {
			case "tbl":
				stack = append(stack, &tableState{})
			case "tr":
				if len(stack) > 0 {
					top := stack[len(stack)-1]
					top.rows = append(top.rows, nil)
				}
			case "tc":
				if len(stack) > 0 {
					top := stack[len(stack)-1]
					if len(top.rows) == 0 {
						top.rows = append(top.rows, nil)
					}
					last := len(top.rows) - 1
					top.rows[last] = append(top.rows[last], &cellState{span: 1})
				}
			case "gridSpan":
				if c := current(); c != nil {
					if n, err := strconv.Atoi(attr(t, "val")); err == nil && n > 1 {
						c.span = n
					}
				}
			case "vMerge":
				if c := current(); c != nil {
					if attr(t, "val") == "restart" {
						c.merge = vmergeRestart
					} else {
						c.merge = vmergeContinue
					}
				}
			case "p":
				if c := current(); c != nil {
					c.inPara = true
					c.para.Reset()
				}
			case "r":
				runDepth++
			case "t":
				var text string
				if err := d.DecodeElement(&text, &t); err != nil {
					return nil, eris.Wrap(err, "decode text")
				}
				if c := current(); c != nil && c.inPara && runDepth > 0 {
					c.para.WriteString(text)
				}
			case "tab":
				if c := current(); c != nil && c.inPara && runDepth > 0 {
					c.para.WriteByte('\t')
				}
			case "br", "cr":
				if c := current(); c != nil && c.inPara && runDepth > 0 {
					c.para.WriteByte('\n')
				}
			case "drawing", "pict", "object", "pPr", "rPr", "tblPr", "trPr", "tblGrid", "sectPr":
				if err := d.Skip(); err != nil {
					return nil, eris.Wrap(err, "skip element")
				}
			}

		case xml.EndElement:
			if t.Name.Space != wordNamespace {
				continue
			}
			switch t.Name.Local {
			case "p":
				if c := current(); c != nil && c.inPara {
					c.paragraphs = append(c.paragraphs, c.para.String())
					c.inPara = false
				}
			case "r":
				if runDepth > 0 {
					runDepth--
				}
			case "tbl":
				if len(stack) == 0 {
					continue
				}
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if len(stack) == 0 {
					tables = append(tables, top.grid())
				}
			}
		}
	}

	return tables, nil
}

// grid lays the parsed cells onto the table grid.
func (t *tableState) grid() model.Table {
	out := model.Table{Rows: make([][]string, 0, len(t.rows))}
	var prev []string
	for _, row := range t.rows {
		var cells []string
		for _, c := range row {
			text := strings.TrimSpace(strings.Join(c.paragraphs, "\n"))
			for i := 0; i < c.span; i++ {
				col := len(cells)
				if c.merge == vmergeContinue && col < len(prev) {
					cells = append(cells, prev[col])
					continue
				}
				cells = append(cells, text)
			}
		}
		if cells == nil {
			cells = []string{}
		}
		out.Rows = append(out.Rows, cells)
		prev = cells
	}
	return out
}

func attr(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
