// Package tables flattens (parse, extract) result pairs into the four
// fixed-column warehouse row families. Every recognized column is present
// on every row; an absent or unconvertible field is a nil pointer, never a
// missing column, so downstream sinks always see the full schema.
package tables

import "time"

// MarkdownRow is one row of the MARKDOWN table: the full markdown
// rendering of one document.
type MarkdownRow struct {
	RunID             string
	InvoiceUUID       string
	DocumentName      string
	AgenticDocVersion string
	Markdown          string
}

// ChunkRow is one row of the PARSED_CHUNKS table.
type ChunkRow struct {
	RunID        string
	InvoiceUUID  string
	DocumentName string
	ChunkID      *string
	ChunkType    *string
	Text         *string
	Page         *int
	BoxL         *float64
	BoxT         *float64
	BoxR         *float64
	BoxB         *float64
}

// InvoiceMainRow is one row of the INVOICES_MAIN table: the deterministic
// flattening of the extraction's five groups. INVOICE_DATE and TOTAL_DUE
// are best-effort typed conversions of their _RAW companions.
type InvoiceMainRow struct {
	RunID             string
	InvoiceUUID       string
	DocumentName      string
	AgenticDocVersion string

	InvoiceDateRaw *string
	InvoiceDate    *time.Time
	InvoiceNumber  *string
	OrderDate      *string
	PONumber       *string
	Status         *string

	SoldToName    *string
	SoldToAddress *string
	CustomerEmail *string

	SupplierName    *string
	SupplierAddress *string
	Representative  *string
	Email           *string
	Phone           *string
	GSTIN           *string
	PAN             *string

	PaymentTerms   *string
	ShipVia        *string
	ShipDate       *string
	TrackingNumber *string

	Currency    *string
	TotalDueRaw *string
	TotalDue    *float64
	Subtotal    *string
	Tax         *string
	Shipping    *string
	HandlingFee *string
}

// LineItemRow is one row of the INVOICE_LINE_ITEMS table. LineIndex is the
// element's zero-based position in the source list.
type LineItemRow struct {
	RunID             string
	InvoiceUUID       string
	DocumentName      string
	AgenticDocVersion string

	LineIndex   int
	LineNumber  *string
	SKU         *string
	Description *string
	Quantity    *string
	UnitPrice   *string
	Price       *string
	Amount      *string
	Total       *string
}

// Set holds the four ordered row collections produced by one Build call.
type Set struct {
	Markdown  []MarkdownRow
	Chunks    []ChunkRow
	Invoices  []InvoiceMainRow
	LineItems []LineItemRow
}
