// Command extbench measures the network and page-load overhead a Chrome
// extension adds: it crawls a domain list twice — with and without the
// extension — and writes the evaluated, baseline and correlated metric sets
// as JSON.
//
// Usage:
//
//	extbench                        # defaults: tranco.csv, ./extension
//	extbench -config extbench.yaml  # run from a YAML config
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/extbench/overhead"
)

func main() {
	configPath := flag.String("config", "", "path to extbench.yaml config file")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	logger := newLogger(*logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath); err != nil {
		logger.Error("extbench: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath string) error {
	cfg := overhead.DefaultConfig()
	if configPath != "" {
		var err error
		cfg, err = overhead.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}

	return overhead.New(cfg, logger).Run(ctx)
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
