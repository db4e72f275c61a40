package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ade-labs/invoice-pipeline/internal/ade"
)

func TestListDocumentsFiltersUnsupportedAndHidden(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "a.pdf")
	writeDoc(t, root, "b.PNG")
	writeDoc(t, root, "notes.txt")
	writeDoc(t, root, ".hidden.pdf")

	sub := filepath.Join(root, "nested")
	require.NoError(t, os.Mkdir(sub, 0o755))
	writeDoc(t, sub, "c.jpeg")

	hiddenDir := filepath.Join(root, ".cache")
	require.NoError(t, os.Mkdir(hiddenDir, 0o755))
	writeDoc(t, hiddenDir, "d.pdf")

	docs, err := ListDocuments(root)
	require.NoError(t, err)

	names := make([]string, 0, len(docs))
	for _, d := range docs {
		names = append(names, filepath.Base(d))
	}
	assert.ElementsMatch(t, []string{"a.pdf", "b.PNG", "c.jpeg"}, names)
}

func TestListDocumentsRequiresRoot(t *testing.T) {
	_, err := ListDocuments("  ")
	require.Error(t, err)
}

func TestRunBatchIsolatesFailures(t *testing.T) {
	root := t.TempDir()
	good1 := writeDoc(t, root, "good1.pdf")
	bad := writeDoc(t, root, "bad.pdf")
	good2 := writeDoc(t, root, "good2.pdf")

	boom := errors.New("service unavailable")
	client := &fakeClient{parseFn: func(path string) (*ade.ParseResponse, error) {
		if filepath.Base(path) == "bad.pdf" {
			return nil, boom
		}
		return &ade.ParseResponse{
			Markdown: "ok",
			Metadata: ade.Metadata{Filename: filepath.Base(path)},
		}, nil
	}}
	proc := NewProcessor(client, []byte(`{}`), t.TempDir(), nil)

	summary := RunBatch(context.Background(), proc, []string{good1, bad, good2}, 2, nil)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)

	failures := summary.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, bad, failures[0].Path)
	assert.ErrorIs(t, failures[0].Err, boom)

	// outcomes keep submission order; peers are untouched by the failure
	assert.True(t, summary.Outcomes[0].Ok())
	assert.False(t, summary.Outcomes[1].Ok())
	assert.True(t, summary.Outcomes[2].Ok())
	require.NotNil(t, summary.Outcomes[0].Extract)
	require.NotNil(t, summary.Outcomes[2].Extract)
}

func TestRunBatchReportsProgress(t *testing.T) {
	root := t.TempDir()
	docs := []string{
		writeDoc(t, root, "a.pdf"),
		writeDoc(t, root, "b.pdf"),
		writeDoc(t, root, "c.pdf"),
	}
	proc := NewProcessor(&fakeClient{}, []byte(`{}`), t.TempDir(), nil)

	var mu sync.Mutex
	var seen []int
	summary := RunBatch(context.Background(), proc, docs, 3, func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 3, total)
		seen = append(seen, done)
	})

	assert.Equal(t, 3, summary.Succeeded)
	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []int{1, 2, 3}, seen)
}

func TestRunBatchEmpty(t *testing.T) {
	proc := NewProcessor(&fakeClient{}, []byte(`{}`), t.TempDir(), nil)
	summary := RunBatch(context.Background(), proc, nil, 4, nil)
	assert.Equal(t, 0, summary.Total)
	assert.Equal(t, 0, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
}

func TestSummaryCost(t *testing.T) {
	markdown := make([]byte, 10000) // 2.0 units
	for i := range markdown {
		markdown[i] = 'x'
	}
	summary := Summary{Outcomes: []Outcome{
		{
			Parse: &ade.ParseResponse{
				Markdown: string(markdown),
				Metadata: ade.Metadata{PageCount: 2},
			},
			Extract: &ade.ExtractResponse{Extraction: json.RawMessage(`{}`)},
		},
		{Err: errors.New("failed documents cost nothing")},
	}}

	cost := summary.Cost()
	assert.Equal(t, 6.0, cost.ParseUnits) // 3 units/page * 2 pages
	assert.Equal(t, 2.0, cost.ExtractUnits)
	assert.Equal(t, 8.0, cost.Total())
}
