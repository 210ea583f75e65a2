package extract

import (
	"github.com/sells-group/review-cli/internal/model"
)

// Extractor turns one document into one record for a fixed FieldSpec.
// It holds no per-call state and is safe for concurrent use.
type Extractor struct {
	spec *model.FieldSpec
	mode MatchMode
}

// NewExtractor returns an Extractor for spec using mode for label matching.
func NewExtractor(spec *model.FieldSpec, mode MatchMode) *Extractor {
	if mode == "" {
		mode = MatchSubstring
	}
	return &Extractor{spec: spec, mode: mode}
}

// Spec returns the fields the extractor fills.
func (e *Extractor) Spec() *model.FieldSpec {
	return e.spec
}

// Document extracts every field of the FieldSpec from doc. Fields never found are
// null. For each field the tables are searched in order and the first table
// that yields a value wins; later tables are not consulted.
func (e *Extractor) Document(doc *model.Document) model.Record {
	rec := model.NewRecord(e.spec.Names())
	if doc == nil {
		return rec
	}
	m := NewMatcher(e.mode)
	for _, f := range e.spec.Fields() {
		for _, t := range doc.Tables {
			if v, ok := Locate(t, f, m); ok {
				rec[f.Name] = model.Str(v)
				break
			}
		}
	}
	return rec
}
