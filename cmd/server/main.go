// SlideOmni - AI slide presentation generator
// Entry point for the API server
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/findosh/slideomni/internal/config"
	"github.com/findosh/slideomni/internal/handlers"
	"github.com/findosh/slideomni/internal/logging"
	"github.com/findosh/slideomni/internal/services/auth"
	"github.com/findosh/slideomni/internal/services/credits"
	"github.com/findosh/slideomni/internal/services/generation"
	"github.com/findosh/slideomni/internal/services/llm"
	"github.com/findosh/slideomni/internal/services/presentations"
	"github.com/findosh/slideomni/internal/services/slides"
	"github.com/findosh/slideomni/internal/storage"
	"go.uber.org/zap"
)

const (
	shutdownTimeout = 15 * time.Second
	auditEntries    = 1000
	cacheEntries    = 500
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "slideomni: %v\n", err)
		os.Exit(1)
	}
}

// backends groups the repositories chosen by configuration
type backends struct {
	users         storage.Users
	providers     storage.Providers
	presentations storage.Presentations
	closers       []func() error
}

func (b *backends) close(logger *zap.Logger) {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			logger.Warn("close failed", zap.Error(err))
		}
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Environment)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	be, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer be.close(logger)

	authService := auth.NewService(cfg, be.users, logger)
	if err := authService.Bootstrap(ctx, cfg.InitAdmin, cfg.IsProduction()); err != nil {
		return err
	}

	clientCfg := llm.DefaultClientConfig()
	clientCfg.Timeout = cfg.LLMTimeout
	clientCfg.MaxRetries = cfg.LLMMaxRetries
	clientCfg.MaxTokens = cfg.LLMMaxTokens

	audit := llm.NewAuditLogger(logger, auditEntries)
	resolver := llm.NewResolver(be.providers, clientCfg, audit)
	ledger := credits.NewLedger(be.users, logger)
	store := presentations.NewStore(be.presentations, logger, presentations.WithRewrite(cfg.NormalizeRewrite))
	orchestrator := generation.NewOrchestrator(authService, ledger, resolver, slides.NewGenerator(logger), store, logger)

	h := handlers.New(handlers.Deps{
		Config:        cfg,
		Auth:          authService,
		Ledger:        ledger,
		Users:         be.users,
		Resolver:      resolver,
		Audit:         audit,
		Orchestrator:  orchestrator,
		Presentations: store,
		Logger:        logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Generation waits on the upstream model
		WriteTimeout: cfg.LLMTimeout*time.Duration(cfg.LLMMaxRetries+1) + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("environment", cfg.Environment),
			zap.String("storage", cfg.Storage),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func openBackends(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*backends, error) {
	be := &backends{}

	switch cfg.Storage {
	case config.StorageMemory:
		be.users = storage.NewMemoryUsers()
		be.providers = storage.NewMemoryProviders()
		be.presentations = storage.NewMemoryPresentations()
	default:
		db, err := storage.New(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		be.closers = append(be.closers, db.Close)
		if err := db.Migrate(ctx); err != nil {
			be.close(logger)
			return nil, err
		}
		be.users = storage.NewUserRepository(db)
		be.providers = storage.NewProviderRepository(db)
		be.presentations = storage.NewPresentationRepository(db)
	}

	var cache storage.PresentationCache
	if cfg.RedisAddr != "" {
		rc, err := storage.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
		if err != nil {
			be.close(logger)
			return nil, err
		}
		be.closers = append(be.closers, rc.Close)
		cache = rc
		logger.Info("presentation cache", zap.String("backend", "redis"), zap.String("addr", cfg.RedisAddr))
	} else {
		mc := storage.NewMemoryCache(cfg.CacheTTL, cacheEntries)
		be.closers = append(be.closers, func() error { mc.Close(); return nil })
		cache = mc
	}
	be.presentations = storage.NewCachedPresentations(be.presentations, cache)

	return be, nil
}
