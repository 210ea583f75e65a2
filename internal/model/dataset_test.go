package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRecord_AllNull(t *testing.T) {
	t.Parallel()

	r := NewRecord([]string{"a", "b"})
	assert.Len(t, r, 2)
	for _, k := range []string{"a", "b"} {
		v, ok := r[k]
		assert.True(t, ok)
		assert.Nil(t, v)
	}
}

func TestRecord_Get(t *testing.T) {
	t.Parallel()

	r := Record{"a": Str("x"), "b": nil}
	v, ok := r.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	_, ok = r.Get("b")
	assert.False(t, ok)
	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestDataset_ColumnAndStrings(t *testing.T) {
	t.Parallel()

	d := NewDataset([]string{"k", "v"})
	d.Append(Record{"k": Str("1"), "v": Str("one")})
	d.Append(Record{"k": Str("2")})

	assert.True(t, d.HasColumn("v"))
	assert.False(t, d.HasColumn("w"))
	assert.Equal(t, 2, d.Len())

	col := d.Column("v")
	assert.Equal(t, "one", *col[0])
	assert.Nil(t, col[1])

	assert.Equal(t, [][]string{{"1", "one"}, {"2", ""}}, d.Strings())
}

func TestIsAffirmative(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   *string
		want bool
	}{
		{Str("Yes"), true},
		{Str("  yes "), true},
		{Str("Y"), true},
		{Str("YES"), true},
		{Str("y\n"), true},
		{Str("Yes, partly"), false},
		{Str("No"), false},
		{Str("yess"), false},
		{Str(""), false},
		{nil, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsAffirmative(tt.in))
	}
}

func TestTable_Cell(t *testing.T) {
	t.Parallel()

	tbl := Table{Rows: [][]string{{"a", "b"}, {"c"}}}
	v, ok := tbl.Cell(0, 1)
	assert.True(t, ok)
	assert.Equal(t, "b", v)

	_, ok = tbl.Cell(1, 1)
	assert.False(t, ok)
	_, ok = tbl.Cell(2, 0)
	assert.False(t, ok)
	_, ok = tbl.Cell(-1, 0)
	assert.False(t, ok)
}

func TestContainsAffirmative(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   *string
		want bool
	}{
		{Str("Yes"), true},
		{Str("Yes, partly"), true},
		{Str("maybe"), true},
		{Str("Y"), true},
		{Str("No"), false},
		{Str(""), false},
		{nil, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ContainsAffirmative(tt.in))
	}
}

func TestFold(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "problem identified?", Fold("Problem IDENTIFIED?"))
	assert.Equal(t, ".docx", Fold(".DOCX"))
	assert.Equal(t, "", Fold(""))
}
