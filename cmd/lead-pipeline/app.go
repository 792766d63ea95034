package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"lead-pipeline/internal/apollo"
	"lead-pipeline/internal/common/clock"
	"lead-pipeline/internal/common/config"
	"lead-pipeline/internal/common/database"
	commonhttp "lead-pipeline/internal/common/http"
	"lead-pipeline/internal/common/logger"
	"lead-pipeline/internal/common/observability"
	"lead-pipeline/internal/ratelimit"
	"lead-pipeline/internal/transport"
	"lead-pipeline/internal/workflow"
)

// app holds the explicitly constructed instances one CLI invocation uses.
type app struct {
	cfg          *config.Config
	zap          *zap.Logger
	log          logger.Logger
	obs          *observability.Observability
	client       *apollo.Client
	orchestrator *workflow.Orchestrator
	closers      []func(context.Context) error
}

type appOptions struct {
	configPath  string
	metricsAddr string
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func newApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}

	zl := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	a := &app{
		cfg: cfg,
		zap: zl,
		log: logger.NewZapAdapter(zl).With(map[string]interface{}{"service": cfg.App.Name}),
	}

	reg := promclient.NewRegistry()
	a.obs, err = observability.New(observability.Options{
		ServiceName: cfg.App.Name,
		Registerer:  reg,
		Gatherer:    promclient.Gatherers{promclient.DefaultGatherer, reg},
		SetGlobal:   true,
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.obs.Shutdown)

	limiter, err := a.newLimiter(ctx)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	tr, err := transport.New(transport.Options{
		BaseURL:     cfg.Apollo.BaseURL,
		APIKey:      cfg.Apollo.APIKey,
		MaxAttempts: cfg.Apollo.MaxAttempts,
		Doer:        commonhttp.NewClient(config.GetDuration(cfg.Apollo.Timeout)),
		Limiter:     limiter,
		Clock:       clock.Real{},
		Logger:      a.log,
	})
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	a.client = apollo.NewClient(tr, a.log)

	a.orchestrator, err = workflow.New(workflow.Dependencies{
		Search:    a.client,
		Enrich:    a.client,
		Contacts:  a.client,
		Sequences: a.client,
		Logger:    a.log,
		Recorder:  a.obs,
		Clock:     clock.Real{},
	}, workflow.Options{DefaultMaxResults: cfg.Workflow.DefaultMaxResults})
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	addr := opts.metricsAddr
	if addr == "" {
		addr = cfg.Metrics.Address
	}
	if addr != "" {
		a.serveMetrics(addr)
	}
	return a, nil
}

func (a *app) newLimiter(ctx context.Context) (ratelimit.Limiter, error) {
	rpm := a.cfg.Apollo.RateLimit
	switch a.cfg.RateLimiter.Backend {
	case config.RateLimiterRedis:
		rc, err := database.NewRedis(ctx, a.cfg.Database.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect rate limiter backend: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return rc.Close() })
		a.log.Info("Using shared rate limiter", map[string]interface{}{
			"key":               a.cfg.RateLimiter.Key,
			"requestsPerMinute": rpm,
		})
		return ratelimit.NewRedis(rc.GetClient(), a.cfg.RateLimiter.Key, rpm, clock.Real{}), nil
	default:
		return ratelimit.New(rpm, clock.Real{}), nil
	}
}

func (a *app) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.obs.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("Metrics server stopped", map[string]interface{}{"error": err.Error(), "address": addr})
		}
	}()
	a.log.Info("Serving metrics", map[string]interface{}{"address": addr})
	a.closers = append(a.closers, srv.Shutdown)
}

// Close releases resources in reverse construction order.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if a.zap != nil {
		_ = a.zap.Sync()
	}
	return errors.Join(errs...)
}
