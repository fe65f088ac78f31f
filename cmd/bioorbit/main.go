// Command bioorbit ingests binding-affinity literature and serves search over it.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/bioorbit/internal/adapters/driving/cli"
	"github.com/custodia-labs/bioorbit/internal/app"
	"github.com/custodia-labs/bioorbit/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// bootstrap wires the application services from cfg.
func bootstrap(ctx context.Context, cfg *config.Config) (*cli.Services, error) {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &cli.Services{
		Config:    cfg,
		Search:    a.Search,
		Ingest:    a.Ingest,
		Watermark: a.State,
		Scheduler: a.Scheduler,
		Reload: func(next *config.Config) {
			a.Search.UpdateSettings(app.RetrievalSettings(next))
		},
		Close: a.Close,
	}, nil
}
