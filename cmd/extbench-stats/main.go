// Command extbench-stats reads the two metric files a previous extbench run
// produced and prints per-domain differences plus aggregate statistics to
// stdout. Both input files must already exist.
//
// Usage:
//
//	extbench-stats                        # default result file names
//	extbench-stats -config extbench.yaml  # result file names from config
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/hazyhaar/extbench/overhead"
	"github.com/hazyhaar/extbench/stats"
)

func main() {
	configPath := flag.String("config", "", "path to extbench.yaml config file")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	logger := newLogger(*logLevel)

	if err := run(logger, *configPath); err != nil {
		logger.Error("extbench-stats: fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, configPath string) error {
	cfg := overhead.DefaultConfig()
	if configPath != "" {
		var err error
		cfg, err = overhead.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}

	return stats.Run(cfg.Output.WithExtension, cfg.Output.WithoutExtension, os.Stdout)
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
