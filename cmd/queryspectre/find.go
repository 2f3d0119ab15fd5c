package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ppiankov/queryspectre/internal/analyzer"
	"github.com/ppiankov/queryspectre/internal/collector"
	"github.com/ppiankov/queryspectre/internal/logging"
	"github.com/ppiankov/queryspectre/internal/redash"
	"github.com/ppiankov/queryspectre/internal/reporter"
	"github.com/ppiankov/queryspectre/pkg/config"
	"github.com/spf13/cobra"
)

// flags that a config file must not override once set on the command line
var fileOverridableFlags = []string{"timeout", "page-size", "rate-limit", "max-retries", "clickhouse-dsn"}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	var timeoutStr string
	var configPath string

	cmd := &cobra.Command{
		Use:   "queryspectre <url> <key> <data_source_id>",
		Short: "Find tables referenced by Redash saved queries",
		Long: `queryspectre lists the saved queries of one Redash data source, finds the
tables each query reads after FROM or JOIN, and prints how many queries use
each table. With --detail it prints one query_id,table line per reference.`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init(cfg.Verbose)
		},
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 3 {
				cfg.URL = args[0]
				cfg.APIKey = args[1]

				id, err := collector.ParseDataSourceID(args[2])
				if err != nil {
					return err
				}
				cfg.DataSourceID = id
			}

			if err := loadConfigFile(cmd, cfg, configPath); err != nil {
				return err
			}

			if cmd.Flags().Changed("timeout") {
				d, err := config.ParseDuration(timeoutStr)
				if err != nil {
					return fmt.Errorf("invalid --timeout duration: %w", err)
				}
				cfg.RequestTimeout = d
			}

			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	// Output flags
	cmd.Flags().BoolVar(&cfg.Detail, "detail", false, "Print query_id,table pairs instead of the summary")
	cmd.Flags().BoolVar(&cfg.JSON, "json", false, "Print the query to tables map as JSON")

	// HTTP client flags
	cmd.Flags().StringVar(&timeoutStr, "timeout", "30s", "Per-request timeout (e.g., 30s, 2m)")
	cmd.Flags().IntVar(&cfg.PageSize, "page-size", cfg.PageSize, "Queries requested per page")
	cmd.Flags().IntVar(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "Max API requests per second (0 = unlimited)")
	cmd.Flags().IntVar(&cfg.MaxRetries, "max-retries", cfg.MaxRetries, "Attempts per request for transient failures")

	// Schema flags
	cmd.Flags().StringVar(&cfg.ClickHouseDSN, "clickhouse-dsn", "", "Read schema tables from this ClickHouse server instead of Redash")

	// Operational flags
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file (default: .queryspectre.yaml in cwd or home)")
	cmd.PersistentFlags().BoolVar(&cfg.Verbose, "verbose", false, "Verbose logging")

	return cmd
}

func loadConfigFile(cmd *cobra.Command, cfg *config.Config, configPath string) error {
	var (
		fileCfg *config.FileConfig
		path    string
		err     error
	)

	if configPath != "" {
		fileCfg, err = config.LoadFile(configPath)
		path = configPath
	} else {
		fileCfg, path, err = config.AutoLoadFile()
	}
	if err != nil {
		return err
	}
	if fileCfg == nil {
		return nil
	}

	explicit := make(map[string]bool, len(fileOverridableFlags))
	for _, name := range fileOverridableFlags {
		explicit[name] = cmd.Flags().Changed(name)
	}

	slog.Debug("loaded config file", slog.String("path", path))
	return fileCfg.Apply(cfg, explicit)
}

// runFind fetches, extracts and reports for one data source
func runFind(ctx context.Context, cfg *config.Config, out io.Writer) error {
	startTime := time.Now()

	slog.Debug("starting",
		slog.String("url", logging.Mask(cfg.URL)),
		slog.String("key", logging.MaskKey(cfg.APIKey)),
		slog.Int("data_source_id", cfg.DataSourceID),
		slog.Int("page_size", cfg.PageSize),
		slog.Int("rate_limit", cfg.RateLimit),
	)

	client, err := redash.New(cfg.URL, cfg.APIKey,
		redash.WithTimeout(cfg.RequestTimeout),
		redash.WithPageSize(cfg.PageSize),
		redash.WithRateLimit(cfg.RateLimit),
		redash.WithMaxRetries(cfg.MaxRetries),
		redash.WithUserAgent("queryspectre/"+version),
	)
	if err != nil {
		return fmt.Errorf("failed to create redash client: %w", err)
	}

	var schema collector.SchemaSource
	if cfg.ClickHouseDSN != "" {
		chSchema, err := collector.NewClickHouseSchema(ctx, cfg.ClickHouseDSN)
		if err != nil {
			return fmt.Errorf("failed to connect schema source: %w", err)
		}
		schema = chSchema
	}

	col := collector.New(client, cfg.DataSourceID, schema)
	defer col.Close()

	result, err := col.Collect(ctx)
	if err != nil {
		return err
	}

	tables := analyzer.New(result.SchemaTables).Analyze(result.Queries)

	if err := reporter.New(cfg, out).Generate(tables); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	slog.Debug("done",
		slog.Int("schema_tables", len(result.SchemaTables)),
		slog.Int("queries", len(result.Queries)),
		slog.Int("matched_queries", tables.Len()),
		slog.Duration("elapsed", time.Since(startTime).Round(time.Millisecond)),
	)

	return nil
}
