package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/osintlab/personscan/internal/aggregate"
	"github.com/osintlab/personscan/internal/browser"
	"github.com/osintlab/personscan/internal/config"
	"github.com/osintlab/personscan/internal/log"
	"github.com/osintlab/personscan/internal/provider"
	"github.com/osintlab/personscan/internal/server"
	"github.com/osintlab/personscan/internal/store"
)

// shutdownTimeout bounds draining in-flight requests on exit.
const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the personscan HTTP API server",
		Long: `Serve starts the HTTP API used by investigation clients.

Endpoints:
  GET  /search?name=&location=     run an investigation
  POST /search                     same, JSON body with optional image
  POST /advanced-search            isolated name/email/phone/domain sub-searches
  GET  /report/{id}                fetch a stored report document
  GET  /report/{id}/export         re-render a report as json, csv, or markdown
  GET  /reports                    paginated report listing
  DELETE /report/{id}              delete a report document
  GET  /health                     liveness check

Examples:
  # Serve on the default address
  personscan serve

  # Serve on all interfaces with a custom data directory
  personscan serve --listen 0.0.0.0:8080 --data-dir /var/lib/personscan

Configuration file (personscan.yml) example:
  keys:
    google_api_key: "..."
    google_search_engine_id: "..."
    hibp_api_key: "..."
    hunter_api_key: "..."
  socks_proxy: "127.0.0.1:9050"`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", config.DefaultListenAddress,
		"HTTP listen address")
	cmd.Flags().String("data-dir", "",
		"Directory for the report and registry databases (default: XDG data dir)")
	cmd.Flags().Duration("provider-timeout", config.DefaultProviderTimeout,
		"Timeout for each provider's search")
	cmd.Flags().Duration("report-timeout", config.DefaultReportTimeout,
		"Timeout for one whole report generation")
	cmd.Flags().Int("browser-sessions", config.DefaultBrowserSessions,
		"Maximum concurrent headless-browser pages")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if cfg.ListenAddress, err = cmd.Flags().GetString("listen"); err != nil {
		return err
	}
	if cfg.ProviderTimeout, err = cmd.Flags().GetDuration("provider-timeout"); err != nil {
		return err
	}
	if cfg.ReportTimeout, err = cmd.Flags().GetDuration("report-timeout"); err != nil {
		return err
	}
	if cfg.BrowserSessions, err = cmd.Flags().GetInt("browser-sessions"); err != nil {
		return err
	}
	dataDir, err := cmd.Flags().GetString("data-dir")
	if err != nil {
		return err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	return runServe(cfg, logger)
}

// runServe assembles the stack and serves until interrupted.
func runServe(cfg *config.Config, logger *slog.Logger) error {
	st, err := store.Open(cfg.DataDir, store.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open report store: %w", err)
	}
	defer st.Close()

	registryDB, err := provider.OpenRegistry(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open registry database: %w", err)
	}
	defer registryDB.Close()

	pool := browser.NewPool(cfg.BrowserSessions, cfg.BrowserNavigationTimeout, cfg.BrowserBin)
	defer pool.Shutdown()

	providers := buildProviders(cfg, pool, registryDB, logger)
	orchestrator := aggregate.NewOrchestrator(providers, st, cfg.ProviderTimeout, logger)
	srv := server.New(orchestrator, st, logger, server.Options{
		ReportTimeout: cfg.ReportTimeout,
		ListLimit:     config.DefaultListLimit,
		MaxListLimit:  config.DefaultMaxListLimit,
		Version:       getVersion(),
	})

	httpServer := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()

	logger.Info("server started",
		slog.String("address", cfg.ListenAddress),
		slog.String("dataDir", cfg.DataDir),
		slog.Int("providers", len(providers)))

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("received shutdown signal, draining...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

// buildConfig creates a Config from defaults, the optional config
// file, and the persistent flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			verbose = false
		}
	}
	cfg.Verbose = verbose

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicitly named config file must exist; the default search
	// locations are optional.
	found := config.FindConfigFile(configPath)
	if found != "" {
		file, err := config.LoadFile(found)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", found, err)
		}
		cfg.ApplyFile(file)
	} else if configPath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, configPath)
	}

	return cfg, nil
}

// buildProviders constructs the full provider fan-out from the
// configuration. Providers without credentials stay in the list and
// answer with empty results.
func buildProviders(cfg *config.Config, pool *browser.Pool, registryDB *provider.RegistryDB, logger *slog.Logger) []provider.Provider {
	return []provider.Provider{
		provider.NewWebSearch(cfg.Keys.GoogleAPIKey, cfg.Keys.GoogleSearchEngineID, cfg.UserAgent, cfg.ProviderTimeout, logger),
		provider.NewSocialMedia(pool, logger),
		provider.NewEmailPhone(cfg.Keys.HunterAPIKey, cfg.UserAgent, cfg.ProviderTimeout, logger),
		provider.NewDomain(cfg.SOCKSProxy, logger),
		provider.NewGeolocation(cfg.UserAgent, cfg.ProviderTimeout, logger),
		provider.NewPublicRecords(cfg.Keys.GoogleAPIKey, cfg.Keys.GoogleSearchEngineID, cfg.UserAgent, cfg.ProviderTimeout, logger),
		provider.NewBreach(cfg.Keys.HIBPAPIKey, cfg.UserAgent, cfg.ProviderTimeout, logger),
		provider.NewRegistry(registryDB, logger),
	}
}
