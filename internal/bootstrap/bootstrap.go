// Package bootstrap wires configuration into a running memory bank.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"memorybank/internal/adapters/cache"
	"memorybank/internal/adapters/filesystem"
	"memorybank/internal/adapters/reader"
	"memorybank/internal/adapters/sqlite"
	"memorybank/internal/adapters/templates"
	"memorybank/internal/adapters/watcher"
	"memorybank/internal/application"
	"memorybank/internal/config"
)

// Runtime holds the adapters behind one orchestrator
type Runtime struct {
	Config       *config.Config
	Orchestrator *application.Orchestrator
	Cache        *cache.Cache
	Reader       *reader.Reader
	Index        *sqlite.Index // nil when history is disabled

	logger  *zap.Logger
	watcher *watcher.Watcher
}

// New builds every adapter from cfg. Nothing is read from the bank yet.
func New(cfg *config.Config, logger *zap.Logger) (*Runtime, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	fsys := filesystem.NewPrimitives(filesystem.WithLogger(logger.Named("fs")))
	c := cache.New(cache.Options{
		MaxSize: cfg.Cache.MaxSize,
		MaxAge:  cfg.Cache.MaxAge,
		Logger:  logger.Named("cache"),
	})
	r := reader.New(fsys, reader.Options{
		Root:            cfg.Root,
		StreamThreshold: cfg.Reader.StreamThreshold,
		ChunkSize:       cfg.Reader.ChunkSize,
		PauseEvery:      cfg.Reader.PauseEvery,
		Timeout:         cfg.Reader.Timeout,
		Cache:           c,
		Logger:          logger.Named("reader"),
	})

	tmpl, err := templates.NewProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	deps := application.Deps{
		FS:        fsys,
		Reader:    r,
		Templates: tmpl,
		Cache:     c,
		Logger:    logger.Named("bank"),
	}

	rt := &Runtime{Config: cfg, Cache: c, Reader: r, logger: logger}

	if cfg.History.Enabled {
		idx, err := openIndex(cfg)
		if err != nil {
			return nil, err
		}
		idx.SetRetention(cfg.History.Retention)
		rt.Index = idx
		deps.Index = idx
	}

	orch, err := application.NewOrchestrator(deps, application.Options{Root: cfg.Root})
	if err != nil {
		if rt.Index != nil {
			_ = rt.Index.Close()
		}
		return nil, fmt.Errorf("failed to create orchestrator: %w", err)
	}
	rt.Orchestrator = orch
	return rt, nil
}

func openIndex(cfg *config.Config) (*sqlite.Index, error) {
	var (
		idx *sqlite.Index
		err error
	)
	if cfg.History.Path != "" {
		idx, err = sqlite.OpenPath(cfg.History.Path)
	} else {
		idx, err = sqlite.Open(cfg.Root)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return idx, nil
}

// Start runs the cache janitor and, when watch is set, a file watcher that
// evicts externally edited documents. Both stop with ctx.
func (rt *Runtime) Start(ctx context.Context, watch bool) error {
	if rt.Config.Cache.SweepInterval > 0 {
		rt.Cache.StartJanitor(ctx, rt.Config.Cache.SweepInterval)
	}
	if !watch {
		return nil
	}

	w, err := watcher.New(rt.Cache, watcher.WithLogger(rt.logger.Named("watcher")))
	if err != nil {
		return err
	}
	if err := w.Start(ctx, rt.Orchestrator.Root()); err != nil {
		_ = w.Stop()
		return err
	}
	rt.watcher = w
	return nil
}

// Close releases the watcher and the history database and clears the
// orchestrator's state.
func (rt *Runtime) Close() error {
	var errs []error
	if rt.watcher != nil {
		errs = append(errs, rt.watcher.Stop())
	}
	if rt.Orchestrator != nil {
		rt.Orchestrator.Dispose()
	}
	if rt.Index != nil {
		errs = append(errs, rt.Index.Close())
	}
	return errors.Join(errs...)
}
