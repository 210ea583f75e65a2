package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/review-cli/internal/model"
)

func adjacent(name string) model.Field { return model.Field{Name: name, Method: model.MethodAdjacent} }
func below(name string) model.Field    { return model.Field{Name: name, Method: model.MethodBelow} }

func TestLocate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		table  model.Table
		field  model.Field
		mode   MatchMode
		want   string
		wantOK bool
	}{
		{
			name:   "adjacent exact label",
			table:  model.Table{Rows: [][]string{{"Module component", "CS101"}}},
			field:  adjacent("Module component"),
			want:   "CS101",
			wantOK: true,
		},
		{
			name:   "adjacent label is last cell",
			table:  model.Table{Rows: [][]string{{"x", "Module component"}, {"Module component", "late"}}},
			field:  adjacent("Module component"),
			wantOK: false,
		},
		{
			name:   "adjacent case-insensitive substring",
			table:  model.Table{Rows: [][]string{{"1. MODULE COMPONENT (required)", "Lab"}}},
			field:  adjacent("Module component"),
			want:   "Lab",
			wantOK: true,
		},
		{
			name: "adjacent first match wins",
			table: model.Table{Rows: [][]string{
				{"Problem identified?", "Yes"},
				{"Problem identified?", "No"},
			}},
			field:  adjacent("Problem identified?"),
			want:   "Yes",
			wantOK: true,
		},
		{
			name: "adjacent leftmost cell wins within a row",
			table: model.Table{Rows: [][]string{
				{"Action taken", "Action taken again", "third"},
			}},
			field:  adjacent("Action taken"),
			want:   "Action taken again",
			wantOK: true,
		},
		{
			name: "below exact label",
			table: model.Table{Rows: [][]string{
				{"Module Code and name", "Other"},
				{"CS101 Intro", "x"},
			}},
			field:  below("Module Code and name"),
			want:   "CS101 Intro",
			wantOK: true,
		},
		{
			name: "below same column index",
			table: model.Table{Rows: [][]string{
				{"a", "b", "Action taken"},
				{"1", "2", "Rewrote labs"},
			}},
			field:  below("Action taken"),
			want:   "Rewrote labs",
			wantOK: true,
		},
		{
			name:   "below on last row",
			table:  model.Table{Rows: [][]string{{"x"}, {"Action taken"}}},
			field:  below("Action taken"),
			wantOK: false,
		},
		{
			name:   "below next row too short",
			table:  model.Table{Rows: [][]string{{"a", "Action taken"}, {"only"}}},
			field:  below("Action taken"),
			wantOK: false,
		},
		{
			name:   "below returns empty cell as value",
			table:  model.Table{Rows: [][]string{{"Action taken"}, {""}}},
			field:  below("Action taken"),
			want:   "",
			wantOK: true,
		},
		{
			name:   "not found",
			table:  model.Table{Rows: [][]string{{"a", "b"}}},
			field:  adjacent("Module component"),
			wantOK: false,
		},
		{
			name:   "empty table",
			table:  model.Table{},
			field:  below("Module component"),
			wantOK: false,
		},
		{
			name: "label substring collides with longer label",
			table: model.Table{Rows: [][]string{
				{"Problem identified?", "Yes"},
				{"Problem identified", ""},
				{"Too few labs", ""},
			}},
			field:  below("Problem identified"),
			want:   "Problem identified",
			wantOK: true,
		},
		{
			name: "exact mode skips longer cell",
			table: model.Table{Rows: [][]string{
				{"Problem identified?", "Yes"},
				{"PROBLEM IDENTIFIED", ""},
				{"Too few labs", ""},
			}},
			field:  below("Problem identified"),
			mode:   MatchExact,
			want:   "Too few labs",
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Locate(tt.table, tt.field, NewMatcher(tt.mode))
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseMatchMode(t *testing.T) {
	t.Parallel()

	m, ok := ParseMatchMode("")
	assert.True(t, ok)
	assert.Equal(t, MatchSubstring, m)

	m, ok = ParseMatchMode(" Exact ")
	assert.True(t, ok)
	assert.Equal(t, MatchExact, m)

	m, ok = ParseMatchMode("SUBSTRING")
	assert.True(t, ok)
	assert.Equal(t, MatchSubstring, m)

	_, ok = ParseMatchMode("fuzzy")
	assert.False(t, ok)
}
