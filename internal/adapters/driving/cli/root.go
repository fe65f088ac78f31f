// Package cli provides the bioorbit command-line interface built on cobra.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/bioorbit/internal/config"
	"github.com/custodia-labs/bioorbit/internal/core/ports/driving"
	"github.com/custodia-labs/bioorbit/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

var (
	cfgFile string
	verbose bool
)

// Services wired for the current process.
var (
	appConfig        *config.Config
	searchService    driving.SearchService
	ingestService    driving.IngestionService
	watermarkService driving.WatermarkService
	scheduler        driving.Scheduler
	reloadSettings   func(*config.Config)
	closeServices    func() error
	bootstrap        BootstrapFunc
)

// errNotBootstrapped is returned when a command needs services but none were wired.
var errNotBootstrapped = errors.New("services not configured")

// annotationStandalone marks commands that run without the core services.
const annotationStandalone = "bioorbit/standalone"

// Services is the set of driving ports a command runs against.
type Services struct {
	Config    *config.Config
	Search    driving.SearchService
	Ingest    driving.IngestionService
	Watermark driving.WatermarkService
	Scheduler driving.Scheduler

	// Reload applies a changed configuration to running services. Optional.
	Reload func(*config.Config)

	// Close releases everything behind the services. Optional.
	Close func() error
}

// BootstrapFunc builds Services from a loaded configuration.
type BootstrapFunc func(ctx context.Context, cfg *config.Config) (*Services, error)

// SetBootstrap registers the function that wires services on first use.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetServices installs already-wired services. A nil s clears them.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	appConfig = s.Config
	searchService = s.Search
	ingestService = s.Ingest
	watermarkService = s.Watermark
	scheduler = s.Scheduler
	reloadSettings = s.Reload
	closeServices = s.Close
}

var rootCmd = &cobra.Command{
	Use:   "bioorbit",
	Short: "Binding-affinity literature search",
	Long: `bioorbit ingests PubMed abstracts about protein-ligand binding into a
vector index and serves similarity search over text, protein and molecule
embeddings with diversity-aware reranking.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default ~/.bioorbit/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command. Command output goes to stdout.
func Execute(ctx context.Context) error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if cmd.Annotations[annotationStandalone] == "true" {
		return nil
	}
	return ensureServices(cmd.Context())
}

func teardown(_ *cobra.Command, _ []string) error {
	logger.Sync()
	if closeServices == nil {
		return nil
	}
	closeFn := closeServices
	closeServices = nil
	return closeFn()
}

// ensureServices loads the configuration and wires services unless they
// are already installed.
func ensureServices(ctx context.Context) error {
	if searchService != nil {
		return nil
	}
	if bootstrap == nil {
		return errNotBootstrapped
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := bootstrap(ctx, cfg)
	if err != nil {
		return fmt.Errorf("starting services: %w", err)
	}
	if s.Config == nil {
		s.Config = cfg
	}
	SetServices(s)
	return nil
}

// configPath resolves the active configuration file.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultPath()
}

// loadConfig returns the wired configuration or loads it from disk.
func loadConfig() (*config.Config, error) {
	if appConfig != nil {
		return appConfig, nil
	}
	return config.Load(cfgFile)
}
