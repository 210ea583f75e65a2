package pipeline

import (
	"context"
	"io"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/review-cli/internal/extract"
	"github.com/sells-group/review-cli/internal/metrics"
	"github.com/sells-group/review-cli/internal/model"
	"github.com/sells-group/review-cli/internal/workbook"
)

// ExtractRequest describes one extraction.
type ExtractRequest struct {
	Sources    []extract.Source
	Output     io.Writer
	OutputName string
}

// ExtractResult is the outcome of an extraction.
type ExtractResult struct {
	RunID string
	*extract.BatchResult
}

// Extract builds one row per source and writes the dataset as a workbook to
// req.Output. Unreadable documents are reported in the result, not as an
// error.
func (p *Pipeline) Extract(ctx context.Context, req ExtractRequest) (*ExtractResult, error) {
	names := make([]string, len(req.Sources))
	for i, s := range req.Sources {
		names[i] = s.Name()
	}

	r := p.begin(ctx, model.RunKindExtract, names)
	r.log.Info("pipeline: extracting", zap.Int("documents", len(names)))

	res, err := p.batch.Run(ctx, req.Sources)
	if err != nil {
		return nil, r.fail(ctx, eris.Wrap(err, "pipeline: extract"))
	}
	metrics.RecordExtraction(res.Dataset, len(res.Failures))

	if err := workbook.WriteExtraction(req.Output, res.Dataset); err != nil {
		return nil, r.fail(ctx, eris.Wrap(err, "pipeline: write extraction"))
	}
	r.saveRecords(ctx, res.Dataset.Rows)

	result := &model.RunResult{
		Documents:   len(req.Sources),
		Failed:      len(res.Failures),
		Rows:        res.Dataset.Len(),
		FieldsFound: res.FieldsFound(),
		Output:      req.OutputName,
	}
	for _, f := range res.Failures {
		result.Failures = append(result.Failures, f.Error())
	}
	r.complete(ctx, result)

	return &ExtractResult{RunID: r.id, BatchResult: res}, nil
}
