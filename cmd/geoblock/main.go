package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/TomasB/geoblock/internal/capture"
	"github.com/TomasB/geoblock/internal/config"
	"github.com/TomasB/geoblock/internal/data"
	"github.com/TomasB/geoblock/internal/filter"
	"github.com/TomasB/geoblock/internal/handler/health"
	"github.com/TomasB/geoblock/internal/handler/status"
	"github.com/TomasB/geoblock/internal/metrics"
	"github.com/TomasB/geoblock/internal/netfilter"
	"github.com/TomasB/geoblock/internal/policy"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Initialize structured logging
	logLevel := getLogLevel(os.Getenv("LOG_LEVEL"))
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("geoblock starting", "log_level", logLevel.String())

	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Refresh the geolocation database when configured to. A failed
	// download is not fatal; an existing (possibly stale) file keeps
	// working and a missing one means the filter fails open.
	if cfg.MMDBAutoUpdate {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		if err := data.EnsureDatabase(ctx, http.DefaultClient, cfg.MMDBPath, cfg.MMDBUpdateURL, cfg.MMDBMaxAge); err != nil {
			slog.Warn("geoip database update failed, continuing with existing file", "error", err)
		}
		cancel()
	}

	lookup := data.NewReloadingReader(cfg.MMDBPath)
	defer lookup.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	go func() {
		if err := lookup.Watch(watchCtx); err != nil {
			slog.Warn("geoip database watch stopped", "error", err)
		}
	}()

	resolver := policy.NewResolver(lookup)
	engine := policy.NewEngine(cfg.BlockedCountries, cfg.Window, resolver)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	metrics.RegisterCacheSize(reg, resolver.CacheSize)

	state := filter.NewRunState()
	journal := filter.NewJournal(256)
	loop := filter.NewLoop(func() (capture.Handle, error) {
		return capture.OpenQueue(cfg.QueueNum)
	}, engine, state, journal, m, logger)

	// Set Gin mode based on log level
	if logLevel == slog.LevelDebug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(ginLogger(logger))
	router.Use(gin.Recovery())

	healthHandler := health.NewHandler(func() error {
		if !state.Running() {
			return errors.New("interception loop stopped")
		}
		return nil
	})
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	statusHandler := status.NewHandler(engine, journal, func() status.Snapshot {
		return status.Snapshot{
			Running:          state.Running(),
			BlockedCountries: engine.Blocked(),
			PortWindow:       cfg.Window.String(),
			QueueNum:         cfg.QueueNum,
			GeoIPLoaded:      lookup.Loaded(),
			CacheSize:        resolver.CacheSize(),
		}
	})
	api := router.Group("/api/v1")
	{
		api.GET("/status", statusHandler.Status)
		api.GET("/decisions", statusHandler.Decisions)
		api.POST("/check", statusHandler.Check)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.StatusPort,
		Handler: router,
	}

	go func() {
		slog.Info("status server started", "port", cfg.StatusPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("status server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Steer outbound traffic into the queue when asked to; otherwise the
	// operator is expected to have installed an equivalent rule.
	var redirect *netfilter.Redirect
	if cfg.ManageNftables {
		redirect, err = netfilter.InstallRedirect(cfg.QueueNum)
		if err != nil {
			slog.Error("failed to install nftables redirect", "error", err)
			os.Exit(1)
		}
		slog.Info("nftables redirect installed", "queue", cfg.QueueNum)
	}

	filter.HandleSignals(state, logger)

	runErr := loop.Run()
	if runErr != nil {
		slog.Error("interception loop failed", "error", runErr)
	}

	// The loop may have exited on its own; make sure readiness flips
	// either way.
	state.Stop()

	if redirect != nil {
		if err := redirect.Remove(); err != nil {
			slog.Error("failed to remove nftables redirect", "error", err)
		}
	}

	slog.Info("geoblock shutting down")

	// Graceful shutdown with 30s timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("status server forced to shutdown", "error", err)
	}

	if runErr != nil {
		os.Exit(1)
	}
	slog.Info("geoblock stopped")
}

// getLogLevel converts string log level to slog.Level
func getLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ginLogger creates a Gin middleware that logs using slog
func ginLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		// Process request
		c.Next()

		// Log request
		duration := time.Since(start)
		statusCode := c.Writer.Status()

		attrs := []any{
			"method", method,
			"path", path,
			"status", statusCode,
			"duration_ms", duration.Milliseconds(),
		}

		if len(c.Errors) > 0 {
			logger.Error("request completed with errors", append(attrs, "errors", c.Errors.String())...)
		} else if statusCode >= 500 {
			logger.Error("request completed", attrs...)
		} else if statusCode >= 400 {
			logger.Warn("request completed", attrs...)
		} else {
			logger.Info("request completed", attrs...)
		}
	}
}
