package pipeline

import (
	"context"
	"io"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/review-cli/internal/metrics"
	"github.com/sells-group/review-cli/internal/model"
	"github.com/sells-group/review-cli/internal/reconcile"
	"github.com/sells-group/review-cli/internal/workbook"
)

// CompareRequest describes one comparison of two extraction workbooks.
type CompareRequest struct {
	Left       workbook.Source
	Right      workbook.Source
	Output     io.Writer
	OutputName string
}

// CompareResult is the outcome of a comparison.
type CompareResult struct {
	RunID string
	*reconcile.Result
}

// Compare joins the two workbooks on the key column and writes the
// three-sheet report to req.Output. A missing key or indicator column is
// reported through Result.Err and in the report itself.
func (p *Pipeline) Compare(ctx context.Context, req CompareRequest) (*CompareResult, error) {
	r := p.begin(ctx, model.RunKindCompare, []string{req.Left.Name(), req.Right.Name()})

	left, err := req.Left.Load()
	if err != nil {
		return nil, r.fail(ctx, eris.Wrapf(err, "pipeline: load %s", req.Left.Name()))
	}
	right, err := req.Right.Load()
	if err != nil {
		return nil, r.fail(ctx, eris.Wrapf(err, "pipeline: load %s", req.Right.Name()))
	}

	res := reconcile.Reconcile(left, right, p.opts)
	highlighted := res.Highlighted()
	metrics.RecordComparison(outcome(res.Err), highlighted)

	if err := workbook.WriteComparison(req.Output, res.Left, res.Right, res.Joined); err != nil {
		return nil, r.fail(ctx, eris.Wrap(err, "pipeline: write comparison"))
	}

	result := &model.RunResult{
		Rows:        res.Joined.Len(),
		Highlighted: highlighted,
		Output:      req.OutputName,
	}
	if res.Err != nil {
		result.Warning = res.Err.Error()
		r.log.Warn("pipeline: comparison incomplete", zap.Error(res.Err))
	}
	if res.DroppedDuplicates > 0 {
		r.log.Warn("pipeline: duplicate keys dropped", zap.Int("dropped", res.DroppedDuplicates))
	}
	r.complete(ctx, result)

	r.log.Info("pipeline: compared",
		zap.Int("rows", result.Rows),
		zap.Int("highlighted", highlighted),
	)
	return &CompareResult{RunID: r.id, Result: res}, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case eris.Is(err, reconcile.ErrMissingKey):
		return metrics.OutcomeMissingKey
	default:
		return metrics.OutcomeMissingIndicator
	}
}
