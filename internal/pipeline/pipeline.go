// Package pipeline runs extractions, comparisons and analyses end to end:
// loading inputs, invoking the engines, writing workbooks, and recording
// each invocation in the run history.
package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/review-cli/internal/extract"
	"github.com/sells-group/review-cli/internal/model"
	"github.com/sells-group/review-cli/internal/reconcile"
	"github.com/sells-group/review-cli/internal/store"
)

// Pipeline wires the extraction and reconciliation engines to the run store.
type Pipeline struct {
	store store.Store
	spec  *model.FieldSpec
	batch *extract.Batch
	opts  reconcile.Options
}

// New creates a Pipeline. A nil store disables run recording.
func New(st store.Store, spec *model.FieldSpec, mode extract.MatchMode, concurrency int) *Pipeline {
	return &Pipeline{
		store: st,
		spec:  spec,
		batch: extract.NewBatch(extract.NewExtractor(spec, mode), concurrency),
		opts:  reconcile.DefaultOptions(),
	}
}

// Spec returns the fields used for extraction.
func (p *Pipeline) Spec() *model.FieldSpec {
	return p.spec
}

// run tracks one recorded invocation. Recording is best effort: store
// failures are logged and never fail the invocation.
type run struct {
	store store.Store
	id    string
	log   *zap.Logger
}

func (p *Pipeline) begin(ctx context.Context, kind model.RunKind, inputs []string) *run {
	r := &run{store: p.store, log: zap.L().With(zap.String("kind", string(kind)))}
	if p.store == nil {
		return r
	}

	rec, err := p.store.CreateRun(ctx, kind, inputs)
	if err != nil {
		r.log.Warn("pipeline: failed to create run", zap.Error(err))
		return r
	}
	r.id = rec.ID
	r.log = r.log.With(zap.String("run_id", rec.ID))

	if err := p.store.UpdateRunStatus(ctx, r.id, model.RunStatusRunning); err != nil {
		r.log.Warn("pipeline: failed to update status", zap.Error(err))
	}
	return r
}

func (r *run) recording() bool {
	return r.store != nil && r.id != ""
}

func (r *run) complete(ctx context.Context, result *model.RunResult) {
	if !r.recording() {
		return
	}
	if err := r.store.UpdateRunResult(ctx, r.id, result); err != nil {
		r.log.Warn("pipeline: failed to record result", zap.Error(err))
	}
}

// fail records err against the run and returns it.
func (r *run) fail(ctx context.Context, err error) error {
	r.log.Error("pipeline: run failed", zap.Error(err))
	if !r.recording() {
		return err
	}
	if recErr := r.store.FailRun(context.WithoutCancel(ctx), r.id, err.Error()); recErr != nil {
		r.log.Warn("pipeline: failed to record failure", zap.Error(recErr))
	}
	return err
}

func (r *run) saveRecords(ctx context.Context, records []model.Record) {
	if !r.recording() {
		return
	}
	if err := r.store.SaveRecords(ctx, r.id, records); err != nil {
		r.log.Warn("pipeline: failed to save records", zap.Error(err))
	}
}
