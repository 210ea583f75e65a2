package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/review-cli/internal/extract"
	"github.com/sells-group/review-cli/internal/model"
	"github.com/sells-group/review-cli/internal/pipeline"
	"github.com/sells-group/review-cli/internal/store"
)

// pipelineEnv holds the run store and the pipeline used by the extract,
// compare, analyze and serve commands.
type pipelineEnv struct {
	Store    store.Store // nil when run history is disabled
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initPipeline validates the config for mode, opens and migrates the store,
// and builds the Pipeline. Callers should defer env.Close().
func initPipeline(ctx context.Context, mode string) (*pipelineEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	matchMode, ok := extract.ParseMatchMode(cfg.Extract.MatchMode)
	if !ok {
		return nil, eris.Errorf("unknown match mode %q", cfg.Extract.MatchMode)
	}

	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	zap.L().Debug("pipeline initialized",
		zap.String("mode", mode),
		zap.String("store", cfg.Store.Driver),
		zap.String("match_mode", string(matchMode)),
		zap.Int("concurrency", cfg.Extract.Concurrency),
	)

	return &pipelineEnv{
		Store:    st,
		Pipeline: pipeline.New(st, model.DefaultFieldSpec(), matchMode, cfg.Extract.Concurrency),
	}, nil
}

// initStore opens the configured backend. The "none" driver yields a nil
// store.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "none":
		return nil, nil
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "review.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// openStore opens and migrates the store. It returns nil when history is
// disabled.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, nil
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}
