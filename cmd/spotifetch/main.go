// Command spotifetch enriches a list of Spotify artist IDs with artist
// metadata and each artist's latest release, writing a combined report
// to a CSV or JSON file.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spotifetch/spotifetch/internal/config"
	"github.com/spotifetch/spotifetch/internal/enrich"
	"github.com/spotifetch/spotifetch/internal/input"
	"github.com/spotifetch/spotifetch/internal/output"
	"github.com/spotifetch/spotifetch/pkg/logging"
	"github.com/spotifetch/spotifetch/pkg/metrics"
	"github.com/spotifetch/spotifetch/pkg/spotify"
)

// Version information (set via ldflags during build).
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// Flag values; empty/zero means "not set, use config".
var (
	flagClientID      string
	flagClientSecret  string
	flagIDs           []string
	flagInput         string
	flagInputFormat   string
	flagIDColumn      string
	flagOutput        string
	flagOutputFormat  string
	flagConcurrency   int
	flagMaxRetries    int
	flagLogLevel      string
	flagPretty        bool
	flagMetricsListen string
)

var rootCmd = &cobra.Command{
	Use:   "spotifetch",
	Short: "Enrich Spotify artist IDs with metadata and latest releases",
	Long: `spotifetch authenticates against the Spotify Web API using the
client-credentials grant, fetches artist metadata in batches of 50 and
each artist's most recent release individually, and writes a combined
per-artist report to a CSV or JSON file.

Artist IDs come from --ids or from a structured input file: a JSON
array of IDs (or records with an "id" field), or a CSV file whose
identifier column may hold plain IDs or embedded JSON.`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&flagClientID, "client-id", "", "Spotify application client ID")
	flags.StringVar(&flagClientSecret, "client-secret", "", "Spotify application client secret")
	flags.StringSliceVar(&flagIDs, "ids", nil, "artist IDs to enrich (comma separated, repeatable)")
	flags.StringVarP(&flagInput, "input", "i", "", "input file holding artist IDs")
	flags.StringVar(&flagInputFormat, "input-format", "", "input format: json or csv")
	flags.StringVar(&flagIDColumn, "id-column", "", "CSV column holding artist IDs")
	flags.StringVarP(&flagOutput, "output", "o", "", "output report file (required)")
	flags.StringVar(&flagOutputFormat, "output-format", "", "output format: csv or json")
	flags.IntVar(&flagConcurrency, "concurrency", 0, "in-flight request ceiling for batched fetches")
	flags.IntVar(&flagMaxRetries, "max-retries", -1, "rate limit retry ceiling per request")
	flags.StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&flagPretty, "pretty", false, "human-readable console logging")
	flags.StringVar(&flagMetricsListen, "metrics-listen", "", "serve Prometheus /metrics on this address during the run")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyFlags(cfg)

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.Pretty || flagPretty,
	})

	if cfg.MetricsListen != "" {
		metrics.Serve(cfg.MetricsListen)
	}

	if flagOutput == "" {
		return errors.New("--output is required")
	}
	outputFormat, err := output.ParseFormat(cfg.OutputFormat)
	if err != nil {
		return err
	}

	ids, err := resolveIDs(cfg)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return errors.New("no artist IDs given: pass --ids or --input")
	}

	client, err := spotify.New(spotify.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
	})
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := client.Authenticate(ctx); err != nil {
		return err
	}

	enricher := enrich.New(client,
		enrich.WithConcurrency(cfg.Concurrency),
		enrich.WithMaxRetries(cfg.MaxRetries),
	)

	report, runErr := enricher.Run(ctx, ids)

	// Best-effort partial output: a run that failed midway still writes
	// whatever data it accumulated before surfacing the error.
	if writeErr := output.WriteFile(flagOutput, outputFormat, report); writeErr != nil {
		logger.Error().Err(writeErr).Str("path", flagOutput).Msg("Failed to write report")
		if runErr != nil {
			return runErr
		}
		return writeErr
	}

	logger.Info().
		Str("path", flagOutput).
		Str("format", string(outputFormat)).
		Int("artists", report.Len()).
		Msg("Report written")

	return runErr
}

// applyFlags overlays explicitly set flags onto the loaded config.
func applyFlags(cfg *config.Config) {
	if flagClientID != "" {
		cfg.ClientID = flagClientID
	}
	if flagClientSecret != "" {
		cfg.ClientSecret = flagClientSecret
	}
	if flagInputFormat != "" {
		cfg.InputFormat = flagInputFormat
	}
	if flagIDColumn != "" {
		cfg.IDColumn = flagIDColumn
	}
	if flagOutputFormat != "" {
		cfg.OutputFormat = flagOutputFormat
	}
	if flagConcurrency > 0 {
		cfg.Concurrency = flagConcurrency
	}
	if flagMaxRetries >= 0 {
		cfg.MaxRetries = flagMaxRetries
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagMetricsListen != "" {
		cfg.MetricsListen = flagMetricsListen
	}
}

// resolveIDs gathers the raw (pre-dedup) artist ID list from flags and
// the optional input file.
func resolveIDs(cfg *config.Config) ([]string, error) {
	ids := append([]string(nil), flagIDs...)

	if flagInput != "" {
		format, err := input.ParseFormat(cfg.InputFormat)
		if err != nil {
			return nil, err
		}
		fileIDs, err := input.ReadIDs(flagInput, format, cfg.IDColumn)
		if err != nil {
			return nil, err
		}
		ids = append(ids, fileIDs...)
	}

	return ids, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
