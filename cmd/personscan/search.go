package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/osintlab/personscan/internal/aggregate"
	"github.com/osintlab/personscan/internal/browser"
	"github.com/osintlab/personscan/internal/config"
	"github.com/osintlab/personscan/internal/export"
	"github.com/osintlab/personscan/internal/format"
	"github.com/osintlab/personscan/internal/log"
	"github.com/osintlab/personscan/internal/model"
	"github.com/osintlab/personscan/internal/provider"
	"github.com/osintlab/personscan/internal/store"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <name>",
		Short: "Run one investigation and print the report",
		Long: `Search runs a single investigation without starting the HTTP server.

The query fans out to every configured provider; sources that fail or
lack credentials are skipped. The report is saved to the local store
and printed in the requested format.

Examples:
  # Search by name
  personscan search "Ravi Kumar"

  # Narrow registry lookups with a location hint
  personscan search "Ravi Kumar" --location Mumbai

  # Append a snapshot to an existing subject
  personscan search "Ravi Kumar" --main-id report_1a2b3c4d5e6f7a8b

  # Render the report as markdown into a file
  personscan search "Ravi Kumar" --format markdown --output report.md`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearchCmd,
	}

	cmd.Flags().StringP("location", "L", "", "Location hint for registry and geolocation lookups")
	cmd.Flags().String("main-id", "", "Existing subject ID to append this snapshot to")
	cmd.Flags().String("data-dir", "", "Directory for the report and registry databases (default: XDG data dir)")
	cmd.Flags().StringP("format", "f", export.FormatJSON, "Output format: json, csv, or markdown")
	cmd.Flags().StringP("output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().Duration("provider-timeout", config.DefaultProviderTimeout,
		"Timeout for each provider's search")

	return cmd
}

// runSearchCmd executes the search command.
func runSearchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if cfg.ProviderTimeout, err = cmd.Flags().GetDuration("provider-timeout"); err != nil {
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

	location, err := cmd.Flags().GetString("location")
	if err != nil {
		return err
	}
	mainID, err := cmd.Flags().GetString("main-id")
	if err != nil {
		return err
	}
	outputFormat, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	query := model.Query{
		Name:     strings.Join(args, " "),
		Location: location,
		MainID:   mainID,
	}

	return runSearch(cmd, cfg, query, outputFormat, outputPath, logger)
}

// runSearch executes one investigation and renders the report.
func runSearch(cmd *cobra.Command, cfg *config.Config, query model.Query, outputFormat, outputPath string, logger *slog.Logger) error {
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

	fmt.Fprintf(cmd.ErrOrStderr(), "Searching %q...\n", query.Name)
	startTime := time.Now()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx, timeoutCancel := context.WithTimeout(ctx, cfg.ReportTimeout)
	defer timeoutCancel()

	result, err := orchestrator.GenerateReport(ctx, query)
	if err != nil {
		return err
	}

	elapsed := time.Since(startTime)
	fmt.Fprintf(cmd.ErrOrStderr(), "Search completed in %s (%d of %d sources failed)\n\n",
		elapsed.Round(time.Millisecond), len(result.Report.Failures), len(providers))

	if result.PersistenceErr != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning: the report was generated but could not be saved")
	}

	canonical := format.Format(result.MainID, result.SubID, result.Report)
	return writeReport(cmd, result.MainID, canonical, outputFormat, outputPath)
}

// writeReport renders the canonical report to stdout or a file.
func writeReport(cmd *cobra.Command, mainID string, report model.CanonicalReport, outputFormat, outputPath string) error {
	output := cmd.OutOrStdout()
	if outputPath != "" {
		dir := filepath.Dir(outputPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports contain personal data; keep them owner-readable only.
		f, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	writer, err := export.NewWriter(outputFormat, output)
	if err != nil {
		if errors.Is(err, export.ErrPDFNotImplemented) || errors.Is(err, export.ErrUnsupportedFormat) {
			return fmt.Errorf("unsupported output format %q (use json, csv, or markdown)", outputFormat)
		}
		return err
	}

	_, err = writer.Write(mainID, []model.CanonicalReport{report})
	return err
}
