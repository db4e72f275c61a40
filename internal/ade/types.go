package ade

import "encoding/json"

// Box is a chunk's bounding box in page coordinates.
type Box struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Grounding maps a chunk back to the page region that supports it.
type Grounding struct {
	Page int  `json:"page"`
	Box  *Box `json:"box,omitempty"`
}

// Chunk is a typed fragment (text, table, figure) of a parsed document.
type Chunk struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Markdown  string     `json:"markdown"`
	Grounding *Grounding `json:"grounding,omitempty"`
}

// Split marks a page range the service identified as a logical sub-document.
type Split struct {
	Class string `json:"class,omitempty"`
	Pages []int  `json:"pages,omitempty"`
}

// Metadata carries the service's per-call bookkeeping.
type Metadata struct {
	Filename   string  `json:"filename,omitempty"`
	PageCount  int     `json:"page_count,omitempty"`
	Version    string  `json:"version,omitempty"`
	CostUnits  float64 `json:"cost,omitempty"`
	DurationMS int64   `json:"duration_ms,omitempty"`
}

// ParseResponse mirrors the parse endpoint's response structure verbatim.
// Read-only after creation.
type ParseResponse struct {
	Chunks   []Chunk  `json:"chunks"`
	Markdown string   `json:"markdown"`
	Metadata Metadata `json:"metadata"`
	Splits   []Split  `json:"splits,omitempty"`
}

// ExtractResponse mirrors the extract endpoint's response structure.
// Extraction stays raw until the table-building boundary decodes it into a
// typed record; per-field confidence/provenance lives in ExtractionMetadata.
type ExtractResponse struct {
	Extraction         json.RawMessage `json:"extraction"`
	ExtractionMetadata json.RawMessage `json:"extraction_metadata,omitempty"`
	Metadata           Metadata        `json:"metadata"`
}
