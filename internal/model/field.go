package model

import (
	"github.com/rotisserie/eris"
)

// Method selects where a field's value sits relative to its label cell.
type Method string

const (
	// MethodAdjacent reads the next cell in the label's row.
	MethodAdjacent Method = "adjacent"
	// MethodBelow reads the cell in the label's column on the following row.
	MethodBelow Method = "below"
)

// Valid reports whether m is a known extraction method.
func (m Method) Valid() bool {
	return m == MethodAdjacent || m == MethodBelow
}

// Field is one labeled value to pull out of a document's tables.
type Field struct {
	Name   string `json:"name" yaml:"name"`
	Method Method `json:"method" yaml:"method"`
}

// FieldSpec is an ordered, read-only set of fields. The order is the column
// order of every dataset produced from it.
type FieldSpec struct {
	fields []Field
	byName map[string]int
}

// NewFieldSpec validates fields and builds an indexed FieldSpec.
// Names must be non-empty and unique; methods must be known.
func NewFieldSpec(fields []Field) (*FieldSpec, error) {
	s := &FieldSpec{
		fields: make([]Field, len(fields)),
		byName: make(map[string]int, len(fields)),
	}
	copy(s.fields, fields)
	for i, f := range s.fields {
		if f.Name == "" {
			return nil, eris.Errorf("field spec: field %d has an empty name", i)
		}
		if !f.Method.Valid() {
			return nil, eris.Errorf("field spec: field %q has unknown method %q", f.Name, f.Method)
		}
		if _, dup := s.byName[f.Name]; dup {
			return nil, eris.Errorf("field spec: duplicate field %q", f.Name)
		}
		s.byName[f.Name] = i
	}
	return s, nil
}

// Module review form labels.
const (
	FieldModuleCodeAndName  = "Module Code and name"
	FieldModuleComponent    = "Module component"
	FieldProblemIdentifiedQ = "Problem identified?"
	FieldProblemAddressedQ  = "Problem addressed?"
	FieldProblemIdentified  = "Problem identified"
	FieldActionTaken        = "Action taken"
)

// DefaultFieldSpec returns the module review form fields.
func DefaultFieldSpec() *FieldSpec {
	s, err := NewFieldSpec([]Field{
		{Name: FieldModuleCodeAndName, Method: MethodBelow},
		{Name: FieldModuleComponent, Method: MethodAdjacent},
		{Name: FieldProblemIdentifiedQ, Method: MethodAdjacent},
		{Name: FieldProblemAddressedQ, Method: MethodAdjacent},
		{Name: FieldProblemIdentified, Method: MethodBelow},
		{Name: FieldActionTaken, Method: MethodBelow},
	})
	if err != nil {
		panic(err)
	}
	return s
}

// Fields returns a copy of the fields in declaration order.
func (s *FieldSpec) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Names returns the field names in declaration order.
func (s *FieldSpec) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Len returns the number of fields.
func (s *FieldSpec) Len() int {
	return len(s.fields)
}

// ByName returns the field with the given name.
func (s *FieldSpec) ByName(name string) (Field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}
