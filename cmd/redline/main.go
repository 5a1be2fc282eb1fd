// Redline - Liquidated damages calculation with statutory cap interception.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joy7758/redline/internal/api"
	"github.com/joy7758/redline/internal/cache"
	"github.com/joy7758/redline/internal/config"
	"github.com/joy7758/redline/internal/damages"
	"github.com/joy7758/redline/internal/discretion"
	"github.com/joy7758/redline/internal/domain"
	"github.com/joy7758/redline/internal/rates"
	"github.com/joy7758/redline/internal/redline"
	"github.com/joy7758/redline/internal/repository"
	"github.com/joy7758/redline/internal/resources"
	"github.com/joy7758/redline/internal/scan"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	configPath := flag.String("config", os.Getenv("REDLINE_CONFIG"), "path to YAML config file")
	flag.Parse()

	// Load configuration before setting up the logger so the log level
	// and format come from the resolved config.
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(newLogHandler(cfg.Logging))
	slog.SetDefault(logger)

	slog.Info("starting redline",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)
	slog.Info("configuration loaded",
		"repository", cfg.Repository.Driver,
		"cache", cfg.Cache.Type,
		"rate_limit_enabled", cfg.RateLimit.Enabled,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Initialize PID record store
	store, err := repository.New(cfg.Repository)
	if err != nil {
		slog.Error("failed to initialize repository", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("repository initialized", "driver", cfg.Repository.Driver)

	// Initialize Cache
	cacheImpl, err := cache.New(cfg.Cache)
	if err != nil {
		slog.Error("failed to initialize cache", "error", err)
		os.Exit(1)
	}
	defer cacheImpl.Close()
	slog.Info("cache initialized", "type", cfg.Cache.Type)

	// Initialize rate provider and red-line interceptor
	rateProvider := rates.NewStaticProvider()
	interceptor := redline.NewInterceptor(rateProvider)
	slog.Info("red-line interceptor initialized", "lpr", rates.DefaultLPR)

	// Initialize damages calculator
	calculator := damages.New(interceptor)

	// Initialize legal resource provider
	provider := resources.NewProvider(store, cacheImpl)
	slog.Info("resource provider initialized", "static_resources", len(provider.List()))

	// Initialize judicial discretion evaluator
	resolver := discretion.NewResolver(provider)
	evaluator := discretion.NewEvaluator(resolver, calculator, store)

	// Initialize contract scan engine with the built-in rule set
	engine, err := scan.NewEngine(cfg.Scan.MaxWorkers)
	if err != nil {
		slog.Error("failed to initialize scan engine", "error", err)
		os.Exit(1)
	}
	defer engine.Close()
	if err := engine.LoadRules(scan.BuiltinRules()); err != nil {
		slog.Error("failed to load scan rules", "error", err)
		os.Exit(1)
	}
	slog.Info("scan engine initialized", "rules_count", engine.RulesCount())

	scanner := scan.NewScanner(engine, store)

	// Initialize Server
	srv := api.NewServer(cfg.Server, cfg.RateLimit, store, cacheImpl, calculator, evaluator, scanner, provider, Version)

	// Start Server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("redline is ready",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	printBanner(cfg, Version)

	// Wait for shutdown signal
	<-ctx.Done()
	slog.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("redline shutdown complete")
}

func newLogHandler(cfg domain.LoggingConfig) slog.Handler {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if os.Getenv("REDLINE_DEBUG") == "true" {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.NewJSONHandler(os.Stdout, opts)
}

func printBanner(cfg *domain.Config, version string) {
	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════╗")
	fmt.Println("  ║              ⚖️  REDLINE                   ║")
	fmt.Println("  ║   Liquidated Damages Calculation Engine   ║")
	fmt.Println("  ║      Statutory caps, never crossed.       ║")
	fmt.Println("  ╚═══════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("  Version:  %s\n", version)
	fmt.Printf("  Server:   http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()
	fmt.Println("  Endpoints:")
	fmt.Println("    POST /damages/calculate    - Calculate liquidated damages")
	fmt.Println("    POST /discretion/evaluate  - Judicial discretion evaluation")
	fmt.Println("    POST /contracts/scan       - Scan contract text for risks")
	fmt.Println("    POST /clauses/analyze      - Analyze a single clause")
	fmt.Println("    GET  /suggestions/{type}   - Drafting suggestion by risk type")
	fmt.Println("    GET  /resources            - List static legal resources")
	fmt.Println("    GET  /resource?uri=...     - Fetch a resource or PID record")
	fmt.Println("    GET  /health               - Health check")
	fmt.Println()
}
