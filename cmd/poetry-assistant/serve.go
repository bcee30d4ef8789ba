package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sozercan/poetry-assistant/internal/analyzer"
	"github.com/sozercan/poetry-assistant/internal/config"
	"github.com/sozercan/poetry-assistant/internal/llm"
	"github.com/sozercan/poetry-assistant/internal/ratelimit"
	"github.com/sozercan/poetry-assistant/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web UI and the /analyze API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := applyLogConfig(cfg.Log); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	llmProvider, err := llm.New(ctx, &cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to create LLM provider: %w", err)
	}

	a := analyzer.New(llmProvider,
		analyzer.WithMaxPoemLength(cfg.Analysis.MaxPoemLength),
		analyzer.WithCodeFenceStripping(cfg.Analysis.StripCodeFences),
		analyzer.WithStrictSchema(cfg.Analysis.StrictSchema),
	)

	var opts []server.Option
	if cfg.RateLimit.Enabled {
		limiter, err := ratelimit.New(cfg.RateLimit)
		if err != nil {
			return fmt.Errorf("failed to create rate limiter: %w", err)
		}
		if closer, ok := limiter.(interface{ Close() error }); ok {
			defer closer.Close()
		}
		opts = append(opts, server.WithRateLimiter(limiter))
	}

	srv := server.New(*cfg, a, opts...)
	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"provider", llmProvider.Name(),
	)
	return srv.Run(ctx)
}

// applyLogConfig installs the configured logger unless flags already chose.
func applyLogConfig(lc config.LogConfig) error {
	level, format := logLevel, logFormat
	if level == "" {
		level = lc.Level
	}
	if format == "" {
		format = lc.Format
	}
	logger, err := newLogger(os.Stderr, level, format)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}
