package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/review-cli/internal/model"
	"github.com/sells-group/review-cli/internal/reconcile"
	"github.com/sells-group/review-cli/internal/workbook"
)

// AnalyzeRequest counts affirmative answers in one column of a workbook.
// An empty Column means "Problem identified?" and an empty Rule means
// reconcile.AnswerExact.
type AnalyzeRequest struct {
	Source workbook.Source
	Column string
	Rule   reconcile.AnswerRule
}

// AnalyzeResult is the outcome of an analysis.
type AnalyzeResult struct {
	RunID  string               `json:"run_id,omitempty"`
	Column string               `json:"column"`
	Rule   reconcile.AnswerRule `json:"rule"`
	Count  int                  `json:"count"`
	Rows   int                  `json:"rows"`
}

// Analyze counts rows of the workbook whose column value is a yes under
// req.Rule.
func (p *Pipeline) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResult, error) {
	column := req.Column
	if column == "" {
		column = p.opts.Indicator
	}
	rule := req.Rule
	if rule == "" {
		rule = reconcile.AnswerExact
	}

	r := p.begin(ctx, model.RunKindAnalyze, []string{req.Source.Name()})

	ds, err := req.Source.Load()
	if err != nil {
		return nil, r.fail(ctx, eris.Wrapf(err, "pipeline: load %s", req.Source.Name()))
	}

	n, err := reconcile.CountAnswers(ds, column, rule)
	if err != nil {
		return nil, r.fail(ctx, err)
	}

	r.complete(ctx, &model.RunResult{Rows: ds.Len(), Count: n})
	r.log.Info("pipeline: analyzed", zap.String("column", column), zap.String("rule", string(rule)), zap.Int("count", n))

	return &AnalyzeResult{RunID: r.id, Column: column, Rule: rule, Count: n, Rows: ds.Len()}, nil
}
