package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/ade-labs/invoice-pipeline/internal/ade"
	"github.com/ade-labs/invoice-pipeline/internal/common"
	"github.com/ade-labs/invoice-pipeline/internal/pipeline"
	"github.com/ade-labs/invoice-pipeline/internal/resilience"
	"github.com/ade-labs/invoice-pipeline/internal/schema"
	"github.com/ade-labs/invoice-pipeline/internal/tables"
)

func main() {
	var (
		doc = flag.String("doc", "", "document to process (required)")
		out = flag.String("out", "", "directory for raw JSON results (defaults to ADE_OUTPUT_DIR)")
	)
	flag.Parse()

	if *doc == "" {
		fmt.Fprintln(os.Stderr, "Error: --doc is required")
		os.Exit(1)
	}

	cfg := common.LoadConfig()
	if *out != "" {
		cfg.Batch.OutputDir = *out
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

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

	parseRes, extractRes, err := proc.ProcessDocument(context.Background(), *doc)
	if err != nil {
		logger.Error("processing failed", "document", *doc, "error", err)
		os.Exit(1)
	}

	set, err := tables.BuildOne(parseRes, extractRes, "")
	if err != nil {
		logger.Error("failed to build tables", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Processed %s\n", *doc)
	fmt.Printf("- Chunks: %d\n", len(parseRes.Chunks))
	fmt.Printf("- Markdown chars: %d\n", len(parseRes.Markdown))
	fmt.Printf("- Line items: %d\n", len(set.LineItems))
	fmt.Printf("- Results: %s\n", cfg.Batch.OutputDir)
}
