package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/c3mb0/mindset-mcp/pkg/session"
)

func newRootCmd() *cobra.Command {
	v := newViper()
	cmd := &cobra.Command{
		Use:           serverName,
		Short:         "MCP server that meets users where they are and nudges them toward action",
		Version:       serverVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is optional
			_ = godotenv.Load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("config")
			cfg, err := LoadConfig(v, file)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	registerFlags(cmd.Flags(), v)
	return cmd
}

func run(ctx context.Context, cfg *ServerConfig) error {
	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	store := session.NewStore(cfg.SessionStoreConfig())
	defer store.Close()

	images, err := newImageLibrary(cfg.ImagesDir)
	if err != nil {
		return err
	}
	c, err := buildCoach(cfg, store, images)
	if err != nil {
		return err
	}
	s := setupServer(cfg, c, images, logger)

	logger.Info("starting",
		"version", serverVersion,
		"transport", cfg.Transport,
		"image_mode", cfg.ImageMode,
		"max_length", cfg.MaxLength,
		"soft_at", cfg.Escalation.SoftAt,
		"strong_at", cfg.Escalation.StrongAt,
	)

	if cfg.Transport == transportStdio {
		errLog := slog.NewLogLogger(logger.Handler(), slog.LevelError)
		return server.ServeStdio(s, server.WithErrorLogger(errLog))
	}
	return serveHTTP(ctx, cfg, s, c, logger)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
