package extract

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/review-cli/internal/model"
)

// Source is one input document. Load is called once, from a worker goroutine.
type Source interface {
	Name() string
	Load(ctx context.Context) (*model.Document, error)
}

// Failure records a source that could not be read. Its row in the dataset is
// an all-null placeholder.
type Failure struct {
	Index  int    `json:"index"`
	Source string `json:"source"`
	Err    error  `json:"-"`
}

// Error returns the failure message.
func (f Failure) Error() string {
	return f.Source + ": " + f.Err.Error()
}

// BatchResult is the dataset for a batch plus the per-document failures.
type BatchResult struct {
	Dataset  *model.Dataset
	Sources  []string
	Failures []Failure
}

// FieldsFound counts, per field, the rows with a non-null value.
func (r *BatchResult) FieldsFound() map[string]int {
	found := make(map[string]int, len(r.Dataset.Columns))
	for _, c := range r.Dataset.Columns {
		found[c] = 0
		for _, row := range r.Dataset.Rows {
			if row[c] != nil {
				found[c]++
			}
		}
	}
	return found
}

// Batch extracts a dataset from many documents using a bounded worker pool.
type Batch struct {
	ext         *Extractor
	concurrency int
}

// NewBatch returns a Batch running at most concurrency documents at once.
func NewBatch(ext *Extractor, concurrency int) *Batch {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Batch{ext: ext, concurrency: concurrency}
}

// Run loads and extracts every source. The dataset has exactly one row per
// source, in input order. A source that fails to load gets a null row and a
// Failure entry; the batch itself only fails when ctx is done.
func (b *Batch) Run(ctx context.Context, sources []Source) (*BatchResult, error) {
	names := b.ext.Spec().Names()
	records := make([]model.Record, len(sources))
	errs := make([]error, len(sources))

	zap.L().Info("extracting batch",
		zap.Int("documents", len(sources)),
		zap.Int("concurrency", b.concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := src.Load(gctx)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				errs[i] = err
				records[i] = model.NewRecord(names)
				zap.L().Warn("document unreadable, using empty row",
					zap.String("source", src.Name()),
					zap.Error(err),
				)
				return nil
			}
			records[i] = b.ext.Document(doc)
			return nil
		})
	}

	// Workers only fail on cancellation.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &BatchResult{
		Dataset: model.NewDataset(names),
		Sources: make([]string, len(sources)),
	}
	for i, src := range sources {
		res.Sources[i] = src.Name()
		res.Dataset.Append(records[i])
		if errs[i] != nil {
			res.Failures = append(res.Failures, Failure{Index: i, Source: src.Name(), Err: errs[i]})
		}
	}

	zap.L().Info("batch extracted",
		zap.Int("rows", res.Dataset.Len()),
		zap.Int("failed", len(res.Failures)),
	)
	return res, nil
}
