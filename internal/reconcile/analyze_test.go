package reconcile

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountAffirmative(t *testing.T) {
	ds := dataset([]string{key, ind},
		[]string{"Lab", "Yes"},
		[]string{"Exam", " y "},
		[]string{"Lecture", "No"},
		[]string{"Tutorial", "<nil>"},
		[]string{"Project", "YES"},
	)

	n, err := CountAffirmative(ds, ind)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestCountAffirmative_MissingColumn(t *testing.T) {
	ds := dataset([]string{key}, []string{"Lab"})

	n, err := CountAffirmative(ds, ind)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrMissingColumn))
	assert.Equal(t, 0, n)
}

func TestCountAnswers_Rules(t *testing.T) {
	ds := dataset([]string{key, ind},
		[]string{"Lab", "Yes"},
		[]string{"Exam", "Yes, partly"},
		[]string{"Lecture", "No"},
		[]string{"Tutorial", "<nil>"},
		[]string{"Project", "maybe"},
		[]string{"Seminar", "Y"},
	)

	tests := []struct {
		rule AnswerRule
		want int
	}{
		{AnswerExact, 2},
		{AnswerContains, 4},
	}
	for _, tt := range tests {
		t.Run(string(tt.rule), func(t *testing.T) {
			n, err := CountAnswers(ds, ind, tt.rule)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}

	n, err := CountAffirmative(ds, ind)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "CountAffirmative uses the exact rule")
}

func TestCountAnswers_MissingColumn(t *testing.T) {
	ds := dataset([]string{key}, []string{"Lab"})

	_, err := CountAnswers(ds, ind, AnswerContains)
	assert.True(t, eris.Is(err, ErrMissingColumn))
}

func TestParseAnswerRule(t *testing.T) {
	tests := []struct {
		in   string
		want AnswerRule
		ok   bool
	}{
		{"", AnswerExact, true},
		{"exact", AnswerExact, true},
		{"Contains", AnswerContains, true},
		{"CONTAINS", AnswerContains, true},
		{"regex", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseAnswerRule(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
