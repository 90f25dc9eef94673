package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formdef/internal/config"
	"github.com/goliatone/go-formdef/internal/server"
	"github.com/goliatone/go-formdef/pkg/cache"
	"github.com/goliatone/go-formdef/pkg/compiler"
	"github.com/goliatone/go-formdef/pkg/loader"
	"github.com/goliatone/go-formdef/pkg/model"
	"github.com/goliatone/go-formdef/pkg/orchestrator"
)

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve form definitions over HTTP",
		Long: `Load every definition under forms.dir and serve them:

  GET  /forms                  form ids
  GET  /forms/{id}             rendered form (?renderer=json|template, ?locale=)
  GET  /forms/{id}/compiled    compiled form JSON
  POST /forms/{id}/validate    validate a JSON submission
  GET  /metrics                Prometheus metrics
  GET  /healthz                liveness

Compiled forms are memoized in the configured cache backend.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			orch, closeCache, err := a.serveOrchestrator(ctx)
			if err != nil {
				return err
			}
			defer closeCache()

			srv, err := server.New(orch,
				server.WithLogger(a.logger),
				server.WithLocale(a.cfg.Render.Locale),
			)
			if err != nil {
				return err
			}
			return srv.Run(ctx, a.cfg.Server.Addr)
		},
	}
	cmd.Flags().String("server-addr", ":8080", "listen address")
	cmd.Flags().String("forms-dir", "forms", "directory holding form definitions")
	cmd.Flags().String("cache-backend", config.CacheMemory, "cache backend (none, memory, redis)")
	return cmd
}

func (a *app) serveOrchestrator(ctx context.Context) (*orchestrator.Orchestrator, func(), error) {
	store, err := loader.LoadFS(os.DirFS(a.cfg.Forms.Dir))
	if err != nil {
		return nil, nil, err
	}
	a.logger.Info("definitions loaded", zap.String("dir", a.cfg.Forms.Dir), zap.Strings("forms", store.IDs()))

	memo, closeCache, err := newCompiler(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, nil, err
	}
	orch := orchestrator.New(
		orchestrator.WithStore(store),
		orchestrator.WithCompiler(memo),
		orchestrator.WithDefaultRenderer(a.cfg.Render.Default),
		orchestrator.WithLogger(a.logger),
	)
	return orch, closeCache, nil
}

// newCompiler builds the compile step for cfg.Cache.Backend. The returned
// func releases the backend.
func newCompiler(ctx context.Context, cfg *config.Config, logger *zap.Logger) (orchestrator.Compiler, func(), error) {
	inner := compiler.New(
		compiler.WithLocale(cfg.Render.Locale),
		compiler.WithProfile(cfg.Cache.Profile),
		compiler.WithLogger(logger),
	)
	storeCfg := cache.Config{DefaultTTL: cfg.Cache.TTL, Prefix: cfg.Redis.Prefix}
	opts := []cache.Option{cache.WithLogger(logger), cache.WithTTL(cfg.Cache.TTL)}

	switch cfg.Cache.Backend {
	case config.CacheNone:
		return orchestrator.CompilerFunc(func(_ context.Context, def model.FormDefinition) (*model.CompiledForm, error) {
			return inner.Compile(def)
		}), func() {}, nil
	case config.CacheMemory:
		store, err := cache.NewMemoryStore(cfg.Cache.Size, storeCfg)
		if err != nil {
			return nil, nil, err
		}
		return cache.New(inner, store, opts...), func() {}, nil
	case config.CacheRedis:
		store, err := cache.NewRedisStore(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Config:   storeCfg,
		})
		if err != nil {
			return nil, nil, err
		}
		return cache.New(inner, store, opts...), func() {
			if err := store.Close(); err != nil {
				logger.Warn("close redis cache", zap.Error(err))
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported cache backend %q", cfg.Cache.Backend)
	}
}
