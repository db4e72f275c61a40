package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ade-labs/invoice-pipeline/internal/ade"
	"github.com/ade-labs/invoice-pipeline/internal/common"
	"github.com/ade-labs/invoice-pipeline/internal/export"
	"github.com/ade-labs/invoice-pipeline/internal/pipeline"
	"github.com/ade-labs/invoice-pipeline/internal/resilience"
	"github.com/ade-labs/invoice-pipeline/internal/schema"
	"github.com/ade-labs/invoice-pipeline/internal/tables"
	"github.com/ade-labs/invoice-pipeline/internal/warehouse"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	// Parse CLI flags
	var (
		dir     = flag.String("dir", "", "directory of documents to process (required)")
		out     = flag.String("out", "", "directory for raw JSON results (defaults to ADE_OUTPUT_DIR)")
		xlsxOut = flag.String("xlsx", "", "optional XLSX workbook output path")
		dbPath  = flag.String("sqlite", "", "optional SQLite warehouse path (\":memory:\" allowed)")
		pgDSN   = flag.String("pg-dsn", "", "optional Postgres warehouse DSN")
		workers = flag.Int("workers", 0, "worker pool size (defaults to ADE_MAX_WORKERS)")
		runID   = flag.String("run-id", "", "run identifier shared by all emitted rows (generated if empty)")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}

	cfg := common.LoadConfig()
	if *out != "" {
		cfg.Batch.OutputDir = *out
	}
	if *workers > 0 {
		cfg.Batch.MaxWorkers = *workers
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Wire the remote boundary: retry budget and breaker live here, not in
	// the pipeline.
	exec := resilience.NewExecutor(resilience.ConfigWithRetry(
		cfg.ADE.MaxRetries, cfg.ADE.MaxRetryWait, cfg.ADE.RetryLogging))
	client := ade.NewClient(ade.Config{
		APIKey:    cfg.ADE.APIKey,
		BaseURL:   cfg.ADE.BaseURL,
		Model:     cfg.ADE.Model,
		Timeout:   cfg.ADE.HTTPTimeout,
		BatchSize: cfg.ADE.BatchSize,
	}, exec, logger)

	schemaJSON, err := schema.MarshalInvoiceJSONSchema()
	if err != nil {
		logger.Error("failed to marshal extraction schema", "error", err)
		os.Exit(1)
	}
	proc := pipeline.NewProcessor(client, schemaJSON, cfg.Batch.OutputDir, logger)

	documents, err := pipeline.ListDocuments(*dir)
	if err != nil {
		logger.Error("failed to enumerate documents", "dir", *dir, "error", err)
		os.Exit(1)
	}
	if len(documents) == 0 {
		logger.Warn("no supported documents found", "dir", *dir)
	}

	logger.Info("starting batch", "dir", *dir, "documents", len(documents), "workers", cfg.Batch.MaxWorkers)
	summary := pipeline.RunBatch(ctx, proc, documents, cfg.Batch.MaxWorkers, func(done, total int) {
		logger.Info("batch.progress", "done", done, "total", total)
	})

	cost := summary.Cost()
	logger.Info("batch cost estimate",
		"parse_units", cost.ParseUnits,
		"extract_units", cost.ExtractUnits,
		"total_units", cost.Total(),
	)

	// Flatten successful pairs into the four tables.
	var pairs []tables.Pair
	for _, o := range summary.Outcomes {
		if o.Ok() {
			pairs = append(pairs, tables.Pair{Parse: o.Parse, Extract: o.Extract})
		}
	}
	set, err := tables.Build(pairs, *runID)
	if err != nil {
		logger.Error("failed to build tables", "error", err)
		os.Exit(1)
	}

	if *dbPath != "" {
		loader, err := warehouse.OpenSQLite(*dbPath, logger)
		if err != nil {
			logger.Error("failed to open warehouse", "path", *dbPath, "error", err)
			os.Exit(1)
		}
		defer func() { _ = loader.Close() }()
		if err := loader.EnsureSchema(ctx); err != nil {
			logger.Error("failed to create warehouse schema", "error", err)
			os.Exit(1)
		}
		if err := loader.Load(ctx, set); err != nil {
			logger.Error("failed to load warehouse", "error", err)
			os.Exit(1)
		}
	}

	if *pgDSN != "" {
		loader, err := warehouse.OpenPostgres(ctx, warehouse.PGConfig{
			DSN:         *pgDSN,
			DialTimeout: 10 * time.Second,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to postgres warehouse", "error", err)
			os.Exit(1)
		}
		defer loader.Close()
		if err := loader.EnsureSchema(ctx); err != nil {
			logger.Error("failed to create warehouse schema", "error", err)
			os.Exit(1)
		}
		if err := loader.Load(ctx, set); err != nil {
			logger.Error("failed to load warehouse", "error", err)
			os.Exit(1)
		}
	}

	if *xlsxOut != "" {
		wb, err := export.Workbook(set)
		if err != nil {
			logger.Error("failed to build workbook", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*xlsxOut, wb, 0o644); err != nil {
			logger.Error("failed to write workbook", "path", *xlsxOut, "error", err)
			os.Exit(1)
		}
		logger.Info("workbook written", "path", *xlsxOut)
	}

	fmt.Printf("Batch complete!\n")
	fmt.Printf("- Documents: %d\n", summary.Total)
	fmt.Printf("- Succeeded: %d\n", summary.Succeeded)
	fmt.Printf("- Failed: %d\n", summary.Failed)
	for _, f := range summary.Failures() {
		fmt.Printf("  - %s: %v\n", f.Path, f.Err)
	}
	fmt.Printf("- Results: %s\n", cfg.Batch.OutputDir)

	if summary.Failed > 0 {
		os.Exit(1)
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
