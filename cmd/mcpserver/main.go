// Package main is the stdio entry point for an mcpcore server endpoint.
// file: cmd/mcpserver/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mcpcore/mcpcore/internal/config"
	"github.com/mcpcore/mcpcore/internal/endpoint"
	"github.com/mcpcore/mcpcore/internal/logging"
	"github.com/mcpcore/mcpcore/internal/metrics"
	"github.com/mcpcore/mcpcore/internal/middleware"
	"github.com/mcpcore/mcpcore/internal/transport"
)

var (
	version = "dev"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("mcpcore %s\n", version)
		return
	}

	if err := run(*configPath); err != nil {
		logging.GetLogger("main").Error("server exited with error", "error", fmt.Sprintf("%+v", err))
		os.Exit(1)
	}
}

func run(configPath string) error {
	settings, err := config.LoadConfig(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	level, ok := logging.ParseLevel(settings.Logging.Level)
	if !ok {
		level = logging.LevelInfo
	}
	logging.InitLogging(level, os.Stderr)
	logger := logging.GetLogger("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := metrics.NewCollector(50)
	hooks := buildHooks(settings, collector)

	tr := transport.NewNDJSONTransport(os.Stdin, os.Stdout, os.Stdin, logging.GetLogger("transport"))

	ep, err := endpoint.New(endpoint.Config{
		Role:      endpoint.RoleServer,
		Transport: tr,
		Logger:    logging.GetLogger("endpoint"),
		Info: endpoint.Implementation{
			Name:    settings.Server.Name,
			Version: settings.Server.Version,
		},
		Hooks:         hooks,
		ShutdownGrace: time.Duration(settings.Timeouts.RequestMs) * time.Millisecond,
		Metrics:       collector,
	})
	if err != nil {
		return errors.Wrap(err, "failed to build endpoint")
	}

	if err := ep.Start(ctx); err != nil {
		return errors.Wrap(err, "failed to start endpoint")
	}
	logger.Info("mcpcore server listening on stdio", "name", settings.Server.Name, "version", settings.Server.Version)

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ep.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "endpoint shutdown failed")
	}
	logger.Info("shutdown complete")
	return nil
}

// buildHooks wires the pre-dispatch chain from settings; auth and rate
// limiting are both opt-in, so a bare-default config yields an empty chain.
// Rejections from either hook feed collector so they show up in metrics.Snapshot.
func buildHooks(settings *config.Settings, collector *metrics.Collector) *middleware.Chain {
	chain := middleware.NewChain()

	if settings.Hooks.Auth.Enabled {
		chain.Use(middleware.NewAuthHook(middleware.AuthConfig{
			APIKeys:        settings.Hooks.Auth.APIKeys,
			AllowAnonymous: settings.Hooks.Auth.AllowAnonymous,
			OnReject:       collector.RecordAuthRejection,
		}))
	}

	if settings.Hooks.RateLimit.Enabled {
		rlConfig := middleware.PresetByName(settings.Hooks.RateLimit.Preset)
		if settings.Hooks.RateLimit.WindowMs > 0 {
			rlConfig.WindowMs = settings.Hooks.RateLimit.WindowMs
		}
		if settings.Hooks.RateLimit.MaxRequests > 0 {
			rlConfig.MaxRequests = settings.Hooks.RateLimit.MaxRequests
		}
		rlConfig.OnReject = collector.RecordRateLimitRejection
		chain.Use(middleware.NewRateLimiterHook(rlConfig))
	}

	return chain
}
