package tables

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ade-labs/invoice-pipeline/internal/ade"
	"github.com/ade-labs/invoice-pipeline/internal/common"
)

func sampleParse(filename string, chunks int) *ade.ParseResponse {
	p := &ade.ParseResponse{
		Markdown: "# Invoice\n...",
		Metadata: ade.Metadata{Filename: filename, Version: "dpt-2-20250801", PageCount: 1},
	}
	for i := 0; i < chunks; i++ {
		p.Chunks = append(p.Chunks, ade.Chunk{
			ID:       string(rune('a' + i)),
			Type:     "text",
			Markdown: "chunk text",
			Grounding: &ade.Grounding{
				Page: 0,
				Box:  &ade.Box{Left: 0.1, Top: 0.2, Right: 0.9, Bottom: 0.3},
			},
		})
	}
	return p
}

func sampleExtract(t *testing.T, extraction string) *ade.ExtractResponse {
	t.Helper()
	require.True(t, json.Valid([]byte(extraction)))
	return &ade.ExtractResponse{Extraction: json.RawMessage(extraction)}
}

func TestBuildScenario(t *testing.T) {
	extract := sampleExtract(t, `{
		"invoice_info": {"invoice_number": "INV-001", "invoice_date_raw": "2025-01-15"},
		"totals_summary": {"total_due_raw": "150.00"},
		"line_items": [
			{"description": "Item A"},
			{"description": "Item B"}
		]
	}`)

	set, err := BuildOne(sampleParse("invoice_001.pdf", 3), extract, "")
	require.NoError(t, err)

	require.Len(t, set.Markdown, 1)
	require.Len(t, set.Chunks, 3)
	require.Len(t, set.Invoices, 1)
	require.Len(t, set.LineItems, 2)

	main := set.Invoices[0]
	require.NotNil(t, main.InvoiceNumber)
	assert.Equal(t, "INV-001", *main.InvoiceNumber)
	require.NotNil(t, main.TotalDue)
	assert.Equal(t, 150.0, *main.TotalDue)
	require.NotNil(t, main.InvoiceDate)
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), *main.InvoiceDate)

	// every unpopulated column is an explicit nil, never dropped
	assert.Nil(t, main.SoldToName)
	assert.Nil(t, main.SupplierName)
	assert.Nil(t, main.PaymentTerms)
	assert.Nil(t, main.Currency)
	assert.Nil(t, main.Subtotal)

	assert.Equal(t, 0, set.LineItems[0].LineIndex)
	assert.Equal(t, 1, set.LineItems[1].LineIndex)
}

func TestBuildSharesRunIDAndInvoiceUUID(t *testing.T) {
	pairs := []Pair{
		{Parse: sampleParse("a.pdf", 2), Extract: sampleExtract(t, `{"line_items": [{"sku": "X"}]}`)},
		{Parse: sampleParse("b.pdf", 1), Extract: sampleExtract(t, `{}`)},
	}

	set, err := Build(pairs, "run-42")
	require.NoError(t, err)

	for _, r := range set.Markdown {
		assert.Equal(t, "run-42", r.RunID)
	}
	for _, r := range set.Chunks {
		assert.Equal(t, "run-42", r.RunID)
	}
	for _, r := range set.Invoices {
		assert.Equal(t, "run-42", r.RunID)
	}
	for _, r := range set.LineItems {
		assert.Equal(t, "run-42", r.RunID)
	}

	// all rows from one document share that document's invoice uuid
	uuidA := set.Markdown[0].InvoiceUUID
	assert.Equal(t, uuidA, set.Chunks[0].InvoiceUUID)
	assert.Equal(t, uuidA, set.Chunks[1].InvoiceUUID)
	assert.Equal(t, uuidA, set.Invoices[0].InvoiceUUID)
	assert.Equal(t, uuidA, set.LineItems[0].InvoiceUUID)

	uuidB := set.Markdown[1].InvoiceUUID
	assert.Equal(t, uuidB, set.Chunks[2].InvoiceUUID)
	assert.Equal(t, uuidB, set.Invoices[1].InvoiceUUID)
	assert.NotEqual(t, uuidA, uuidB)
}

func TestBuildGeneratesRunIDWhenEmpty(t *testing.T) {
	set, err := BuildOne(sampleParse("a.pdf", 0), sampleExtract(t, `{}`), "")
	require.NoError(t, err)
	assert.NotEmpty(t, set.Markdown[0].RunID)
}

func TestBuildChunkOrderingPreserved(t *testing.T) {
	set, err := BuildOne(sampleParse("a.pdf", 4), sampleExtract(t, `{}`), "r")
	require.NoError(t, err)

	require.Len(t, set.Chunks, 4)
	for i, row := range set.Chunks {
		require.NotNil(t, row.ChunkID)
		assert.Equal(t, string(rune('a'+i)), *row.ChunkID)
	}
}

func TestBuildMalformedValuesBecomeNilTypedColumns(t *testing.T) {
	extract := sampleExtract(t, `{
		"invoice_info": {"invoice_date_raw": "sometime last spring"},
		"totals_summary": {"total_due_raw": "call for pricing"}
	}`)

	set, err := BuildOne(sampleParse("a.pdf", 0), extract, "r")
	require.NoError(t, err)

	main := set.Invoices[0]
	require.NotNil(t, main.InvoiceDateRaw)
	assert.Equal(t, "sometime last spring", *main.InvoiceDateRaw)
	assert.Nil(t, main.InvoiceDate)
	require.NotNil(t, main.TotalDueRaw)
	assert.Equal(t, "call for pricing", *main.TotalDueRaw)
	assert.Nil(t, main.TotalDue)
}

func TestBuildRejectsDeepNesting(t *testing.T) {
	extract := sampleExtract(t, `{"invoice_info": {"billing": {"city": "Metropolis"}}}`)

	_, err := BuildOne(sampleParse("a.pdf", 0), extract, "r")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestBuildMissingMetadataFallsBack(t *testing.T) {
	p := &ade.ParseResponse{Markdown: "x"}
	set, err := BuildOne(p, sampleExtract(t, `{}`), "r")
	require.NoError(t, err)
	assert.Equal(t, "unknown", set.Markdown[0].DocumentName)
	assert.Equal(t, "unknown", set.Markdown[0].AgenticDocVersion)
}
