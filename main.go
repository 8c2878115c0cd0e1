package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/seamosgenios/classcal/internal/config"
	"github.com/seamosgenios/classcal/internal/subjects"
	"github.com/seamosgenios/classcal/internal/web"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "classcal",
		Usage: "class schedule manager backed by per-subject Google calendars",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Usage: "HTTP listen address (overrides CLASSCAL_LISTEN)",
			},
			&cli.StringFlag{
				Name:  "subjects",
				Usage: "YAML subjects file (overrides the built-in registry)",
			},
			&cli.StringFlag{
				Name:  "credentials",
				Usage: "path to the OAuth credentials.json file",
			},
			&cli.StringFlag{
				Name:  "token",
				Usage: "path to the saved token file",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Action: serve,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	level := slog.LevelInfo
	if cmd.Bool("debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := config.Load()
	if v := cmd.String("listen"); v != "" {
		cfg.Listen = v
	}
	if v := cmd.String("subjects"); v != "" {
		cfg.SubjectsPath = v
	}
	if v := cmd.String("credentials"); v != "" {
		cfg.CredentialsPath = v
	}
	if v := cmd.String("token"); v != "" {
		cfg.TokenPath = v
	}

	registry := subjects.Defaults()
	if cfg.SubjectsPath != "" {
		loaded, err := subjects.LoadFile(cfg.SubjectsPath)
		if err != nil {
			return fmt.Errorf("failed to load subjects: %w", err)
		}
		registry = loaded
	}

	server := web.NewServer(cfg, registry)

	slog.Info("starting classcal",
		"listen", cfg.Listen,
		"subjects", len(registry.All()),
		"redirect_uri", cfg.RedirectURI(),
	)
	return http.ListenAndServe(cfg.Listen, server.Handler())
}
