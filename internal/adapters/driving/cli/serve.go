package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	bhttp "github.com/custodia-labs/bioorbit/internal/adapters/driving/http"
	"github.com/custodia-labs/bioorbit/internal/config"
	"github.com/custodia-labs/bioorbit/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the search and ingestion API over HTTP.

Routes:
  GET  /healthz
  GET  /search?q=...&modality=...&limit=...&min_delta_g=...&lambda=...
  POST /search
  GET  /watermark
  POST /ingest        (bearer token required when http.jwt_secret is set)

Changes to the retrieval section of the config file are applied without a
restart. With --schedule, ingestion also runs periodically in the background.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config, :8000)")
	serveCmd.Flags().Bool("schedule", false, "run scheduled ingestion alongside the server")
	serveCmd.Flags().Bool("watch", true, "reload retrieval settings when the config file changes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if searchService == nil {
		return errNotBootstrapped
	}
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.HTTP.Addr
	}
	schedule, _ := cmd.Flags().GetBool("schedule")
	watch, _ := cmd.Flags().GetBool("watch")

	server, err := bhttp.NewServer(&bhttp.Ports{
		Search:    searchService,
		Ingest:    ingestService,
		Watermark: watermarkService,
	}, bhttp.Config{JWTSecret: cfg.HTTP.JWTSecret})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var wg sync.WaitGroup
	defer wg.Wait()

	if (schedule || cfg.Schedule.Enabled) && scheduler != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := scheduler.Start(ctx); err != nil {
				logger.Warn("scheduler stopped: %v", err)
			}
		}()
		defer func() {
			if err := scheduler.Stop(); err != nil {
				logger.Warn("scheduler stop error: %v", err)
			}
		}()
	}

	if watch && reloadSettings != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := config.Watch(ctx, configPath(), reloadSettings); err != nil {
				logger.Warn("config watch disabled: %v", err)
			}
		}()
	}

	cmd.Printf("bioorbit API listening on %s\n", addr)
	err = server.Run(ctx, addr)
	cancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
