// Package warehouse loads the four flattened row families into a tabular
// sink. The sink is passive: fixed tables, fixed columns, append-only
// inserts. Two backends are provided, a local SQLite file and Postgres.
package warehouse

import (
	"fmt"
	"strings"
	"time"

	"github.com/ade-labs/invoice-pipeline/internal/tables"
)

// dateFormat is how typed dates land in the warehouse.
const dateFormat = "2006-01-02"

// columnTypes maps each known column to its DDL type. Anything not listed
// is TEXT.
var columnTypes = map[string]string{
	"PAGE":       "INTEGER",
	"LINE_INDEX": "INTEGER",
	"BOX_L":      "REAL",
	"BOX_T":      "REAL",
	"BOX_R":      "REAL",
	"BOX_B":      "REAL",
	"TOTAL_DUE":  "REAL",
}

func createTableSQL(table string, columns []string) string {
	defs := make([]string, 0, len(columns))
	for _, col := range columns {
		typ, ok := columnTypes[col]
		if !ok {
			typ = "TEXT"
		}
		defs = append(defs, fmt.Sprintf("%s %s", col, typ))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(defs, ", "))
}

func insertSQL(table string, columns []string, placeholder func(i int) string) string {
	ph := make([]string, len(columns))
	for i := range columns {
		ph[i] = placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(ph, ", "))
}

// Row value extraction. Order must match the constants column lists.

func markdownValues(r tables.MarkdownRow) []any {
	return []any{r.RunID, r.InvoiceUUID, r.DocumentName, r.AgenticDocVersion, r.Markdown}
}

func chunkValues(r tables.ChunkRow) []any {
	return []any{
		r.RunID, r.InvoiceUUID, r.DocumentName,
		ptr(r.ChunkID), ptr(r.ChunkType), ptr(r.Text), ptr(r.Page),
		ptr(r.BoxL), ptr(r.BoxT), ptr(r.BoxR), ptr(r.BoxB),
	}
}

func invoiceValues(r tables.InvoiceMainRow) []any {
	return []any{
		r.RunID, r.InvoiceUUID, r.DocumentName, r.AgenticDocVersion,
		ptr(r.InvoiceDateRaw), dateValue(r.InvoiceDate), ptr(r.InvoiceNumber),
		ptr(r.OrderDate), ptr(r.PONumber), ptr(r.Status),
		ptr(r.SoldToName), ptr(r.SoldToAddress), ptr(r.CustomerEmail),
		ptr(r.SupplierName), ptr(r.SupplierAddress), ptr(r.Representative),
		ptr(r.Email), ptr(r.Phone), ptr(r.GSTIN), ptr(r.PAN),
		ptr(r.PaymentTerms), ptr(r.ShipVia), ptr(r.ShipDate), ptr(r.TrackingNumber),
		ptr(r.Currency), ptr(r.TotalDueRaw), ptr(r.TotalDue),
		ptr(r.Subtotal), ptr(r.Tax), ptr(r.Shipping), ptr(r.HandlingFee),
	}
}

func lineItemValues(r tables.LineItemRow) []any {
	return []any{
		r.RunID, r.InvoiceUUID, r.DocumentName, r.AgenticDocVersion,
		r.LineIndex, ptr(r.LineNumber), ptr(r.SKU), ptr(r.Description),
		ptr(r.Quantity), ptr(r.UnitPrice), ptr(r.Price), ptr(r.Amount), ptr(r.Total),
	}
}

// ptr lowers a typed pointer to a driver value, nil staying NULL.
func ptr[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func dateValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateFormat)
}
