package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ade-labs/invoice-pipeline/constants"
	"github.com/ade-labs/invoice-pipeline/internal/ade"
	"github.com/ade-labs/invoice-pipeline/internal/common"
)

// ParseExtractor is the remote-service boundary the pipeline depends on.
// Implementations must be safe for concurrent use; one instance is shared
// across all batch workers.
type ParseExtractor interface {
	Parse(ctx context.Context, documentPath string) (*ade.ParseResponse, error)
	Extract(ctx context.Context, schemaJSON []byte, markdown io.Reader) (*ade.ExtractResponse, error)
}

// Processor runs the parse-then-extract flow for one document and persists
// both raw responses as JSON.
type Processor struct {
	Client     ParseExtractor
	SchemaJSON []byte
	OutputDir  string
	Logger     *slog.Logger
}

func NewProcessor(client ParseExtractor, schemaJSON []byte, outputDir string, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Client: client, SchemaJSON: schemaJSON, OutputDir: outputDir, Logger: logger}
}

// ProcessDocument parses the document, extracts structured data from its
// markdown rendering, and writes parse_<base>.json and extract_<base>.json
// under OutputDir. File names derive only from the document's base name, so
// re-running the same document overwrites deterministically.
//
// Errors propagate uncaught; converting them into per-document failure
// records is the batch orchestrator's job. When extract fails after parse
// succeeded, the parse file stays on disk.
func (p *Processor) ProcessDocument(ctx context.Context, documentPath string) (*ade.ParseResponse, *ade.ExtractResponse, error) {
	ext := filepath.Ext(documentPath)
	if !constants.AllowedExt(ext) {
		return nil, nil, common.UnsupportedFormatError(ext)
	}
	if _, err := os.Stat(documentPath); err != nil {
		return nil, nil, common.IOError("stat document", err)
	}
	if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
		return nil, nil, common.IOError("create output dir", err)
	}

	base := strings.TrimSuffix(filepath.Base(documentPath), ext)

	parseRes, err := p.Client.Parse(ctx, documentPath)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", documentPath, err)
	}
	p.Logger.Info("pipeline.parse.ok",
		"document", documentPath,
		"chunks", len(parseRes.Chunks),
		"pages", parseRes.Metadata.PageCount,
		"markdown_chars", len(parseRes.Markdown),
	)

	if err := p.writeJSON("parse_"+base+".json", parseRes); err != nil {
		return nil, nil, err
	}

	extractRes, err := p.Client.Extract(ctx, p.SchemaJSON, strings.NewReader(parseRes.Markdown))
	if err != nil {
		return nil, nil, fmt.Errorf("extract %s: %w", documentPath, err)
	}
	p.Logger.Info("pipeline.extract.ok",
		"document", documentPath,
		"extraction_bytes", len(extractRes.Extraction),
	)

	if err := p.writeJSON("extract_"+base+".json", extractRes); err != nil {
		return nil, nil, err
	}

	return parseRes, extractRes, nil
}

func (p *Processor) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return common.ValidationError("marshal "+name, err)
	}
	path := filepath.Join(p.OutputDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return common.IOError("write "+name, err)
	}
	p.Logger.Info("pipeline.saved", "path", path, "bytes", len(data))
	return nil
}
