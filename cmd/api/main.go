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

	"postcode_lookup/internal/addresslookup"
	"postcode_lookup/internal/addresslookup/cache"
	"postcode_lookup/internal/field"
	"postcode_lookup/internal/forms"
	apphttp "postcode_lookup/internal/http"
	"postcode_lookup/internal/http/router"
	"postcode_lookup/internal/version"
	"postcode_lookup/platform/config"
	"postcode_lookup/platform/logger"
	"postcode_lookup/platform/validator"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr, "version", version.Version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	lookupCache, err := cache.New(cfg, log)
	if err != nil {
		log.Error("failed to initialize lookup cache", "error", err)
		panic("failed to initialize lookup cache: " + err.Error())
	}
	if pinger, ok := lookupCache.(cache.Pinger); ok {
		if err := withRetry(ctx, log, "lookup cache connection", 5, 2*time.Second, func() error {
			return pinger.Ping(ctx)
		}); err != nil {
			log.Error("failed to reach lookup cache", "error", err)
			panic("failed to reach lookup cache: " + err.Error())
		}
	}
	if closer, ok := lookupCache.(interface{ Close() error }); ok {
		defer func() { _ = closer.Close() }()
	}
	log.Info("lookup cache ready", "driver", cfg.GetCacheDriver())

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	lookupModule := addresslookup.NewModule(cfg, lookupCache, val, log)

	catalog, err := forms.LoadFile(cfg.GetFormsFile(), field.DefaultRegistry(), val)
	if err != nil {
		log.Error("failed to load form definitions", "error", err)
		panic("failed to load form definitions: " + err.Error())
	}
	formsModule := forms.NewModule(catalog, val)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:    cfg,
		Env:       cfg.Env,
		Logger:    log,
		Validator: val,
		Health: map[string]apphttp.HealthChecker{
			"cache":    lookupModule,
			"provider": lookupModule.ProviderHealth(),
		},
		Modules: []apphttp.Module{
			lookupModule,
			formsModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           router.New(app),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.GetLookupTimeout() + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	if memory, ok := lookupCache.(*cache.Memory); ok {
		g.Go(func() error {
			memory.RunPruner(gctx, max(cfg.GetCacheTTL(), time.Minute))
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}
	log.Info("server stopped")
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
