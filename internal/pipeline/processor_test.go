package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ade-labs/invoice-pipeline/internal/ade"
	"github.com/ade-labs/invoice-pipeline/internal/common"
)

type fakeClient struct {
	parseCalls   atomic.Int64
	extractCalls atomic.Int64

	parseFn   func(path string) (*ade.ParseResponse, error)
	extractFn func() (*ade.ExtractResponse, error)
}

func (f *fakeClient) Parse(_ context.Context, documentPath string) (*ade.ParseResponse, error) {
	f.parseCalls.Add(1)
	if f.parseFn != nil {
		return f.parseFn(documentPath)
	}
	return &ade.ParseResponse{
		Markdown: "# Invoice",
		Metadata: ade.Metadata{Filename: filepath.Base(documentPath), Version: "v1", PageCount: 2},
	}, nil
}

func (f *fakeClient) Extract(_ context.Context, _ []byte, markdown io.Reader) (*ade.ExtractResponse, error) {
	f.extractCalls.Add(1)
	if _, err := io.ReadAll(markdown); err != nil {
		return nil, err
	}
	if f.extractFn != nil {
		return f.extractFn()
	}
	return &ade.ExtractResponse{Extraction: json.RawMessage(`{}`)}, nil
}

func writeDoc(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))
	return path
}

func TestProcessDocumentWritesBothFiles(t *testing.T) {
	docDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "results")
	doc := writeDoc(t, docDir, "invoice_001.pdf")

	client := &fakeClient{}
	proc := NewProcessor(client, []byte(`{}`), outDir, nil)

	parseRes, extractRes, err := proc.ProcessDocument(context.Background(), doc)
	require.NoError(t, err)
	require.NotNil(t, parseRes)
	require.NotNil(t, extractRes)

	parseData, err := os.ReadFile(filepath.Join(outDir, "parse_invoice_001.json"))
	require.NoError(t, err)
	var reread ade.ParseResponse
	require.NoError(t, json.Unmarshal(parseData, &reread))
	assert.Equal(t, "invoice_001.pdf", reread.Metadata.Filename)

	_, err = os.Stat(filepath.Join(outDir, "extract_invoice_001.json"))
	require.NoError(t, err)
}

func TestProcessDocumentIdempotentFileNames(t *testing.T) {
	docDir := t.TempDir()
	outDir := t.TempDir()
	doc := writeDoc(t, docDir, "inv.pdf")

	proc := NewProcessor(&fakeClient{}, []byte(`{}`), outDir, nil)

	_, _, err := proc.ProcessDocument(context.Background(), doc)
	require.NoError(t, err)
	_, _, err = proc.ProcessDocument(context.Background(), doc)
	require.NoError(t, err)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2) // same names overwritten, not duplicated
}

func TestProcessDocumentRejectsUnsupportedExtension(t *testing.T) {
	docDir := t.TempDir()
	doc := filepath.Join(docDir, "notes.txt")
	require.NoError(t, os.WriteFile(doc, []byte("hello"), 0o644))

	client := &fakeClient{}
	proc := NewProcessor(client, []byte(`{}`), t.TempDir(), nil)

	_, _, err := proc.ProcessDocument(context.Background(), doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
	assert.Zero(t, client.parseCalls.Load())
}

func TestProcessDocumentMissingFile(t *testing.T) {
	proc := NewProcessor(&fakeClient{}, []byte(`{}`), t.TempDir(), nil)

	_, _, err := proc.ProcessDocument(context.Background(), filepath.Join(t.TempDir(), "ghost.pdf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrIO)
}

func TestProcessDocumentExtractFailureLeavesParseFile(t *testing.T) {
	docDir := t.TempDir()
	outDir := t.TempDir()
	doc := writeDoc(t, docDir, "inv.pdf")

	boom := errors.New("extract exploded")
	client := &fakeClient{extractFn: func() (*ade.ExtractResponse, error) { return nil, boom }}
	proc := NewProcessor(client, []byte(`{}`), outDir, nil)

	_, _, err := proc.ProcessDocument(context.Background(), doc)
	require.ErrorIs(t, err, boom)

	// parse result stays on disk; no extract file
	_, err = os.Stat(filepath.Join(outDir, "parse_inv.json"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(outDir, "extract_inv.json"))
	assert.True(t, os.IsNotExist(err))
}
