package reconcile

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/review-cli/internal/model"
)

// ErrMissingColumn is returned by CountAffirmative when the column is absent.
var ErrMissingColumn = eris.New("reconcile: column missing")

// AnswerRule selects which values count as a yes.
type AnswerRule string

const (
	// AnswerExact counts values that are exactly "y" or "yes" after trimming.
	AnswerExact AnswerRule = "exact"
	// AnswerContains counts any value containing "y", so "Yes, partly"
	// counts. This matches the spreadsheet tool the forms came from.
	AnswerContains AnswerRule = "contains"
)

// ParseAnswerRule converts a flag or form value into an AnswerRule. Empty
// means exact.
func ParseAnswerRule(s string) (AnswerRule, bool) {
	switch AnswerRule(model.Fold(s)) {
	case "", AnswerExact:
		return AnswerExact, true
	case AnswerContains:
		return AnswerContains, true
	default:
		return "", false
	}
}

// CountAffirmative counts rows whose value in column is "y" or "yes".
func CountAffirmative(ds *model.Dataset, column string) (int, error) {
	return CountAnswers(ds, column, AnswerExact)
}

// CountAnswers counts rows whose value in column is a yes under rule.
func CountAnswers(ds *model.Dataset, column string, rule AnswerRule) (int, error) {
	if !ds.HasColumn(column) {
		return 0, eris.Wrapf(ErrMissingColumn, "%q", column)
	}
	yes := model.IsAffirmative
	if rule == AnswerContains {
		yes = model.ContainsAffirmative
	}
	n := 0
	for _, v := range ds.Column(column) {
		if yes(v) {
			n++
		}
	}
	return n, nil
}
