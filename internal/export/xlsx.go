package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ade-labs/invoice-pipeline/constants"
	"github.com/ade-labs/invoice-pipeline/internal/tables"
)

// Workbook renders a row set as an XLSX workbook (as bytes) with one sheet
// per warehouse table. Header rows come from the fixed column lists, so a
// sheet always carries the full column set even when every value in a
// column is empty.
func Workbook(set *tables.Set) ([]byte, error) {
	f := excelize.NewFile()

	if err := writeSheet(f, constants.TableMarkdown, constants.MarkdownColumns, set.Markdown, markdownCells); err != nil {
		return nil, err
	}
	if err := writeSheet(f, constants.TableChunks, constants.ChunkColumns, set.Chunks, chunkCells); err != nil {
		return nil, err
	}
	if err := writeSheet(f, constants.TableInvoices, constants.InvoiceMainColumns, set.Invoices, invoiceCells); err != nil {
		return nil, err
	}
	if err := writeSheet(f, constants.TableLineItems, constants.LineItemColumns, set.LineItems, lineItemCells); err != nil {
		return nil, err
	}

	// drop the default sheet excelize creates
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet[T any](f *excelize.File, sheet string, headers []string, rows []T, cells func(T) []any) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for r, row := range rows {
		for c, v := range cells(row) {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	_ = f.SetColWidth(sheet, "A", "B", 38) // run/invoice ids
	_ = f.SetColWidth(sheet, "C", "C", 28) // document name
	return nil
}

func markdownCells(r tables.MarkdownRow) []any {
	return []any{r.RunID, r.InvoiceUUID, r.DocumentName, r.AgenticDocVersion, r.Markdown}
}

func chunkCells(r tables.ChunkRow) []any {
	return []any{
		r.RunID, r.InvoiceUUID, r.DocumentName,
		deref(r.ChunkID), deref(r.ChunkType), deref(r.Text), deref(r.Page),
		deref(r.BoxL), deref(r.BoxT), deref(r.BoxR), deref(r.BoxB),
	}
}

func invoiceCells(r tables.InvoiceMainRow) []any {
	return []any{
		r.RunID, r.InvoiceUUID, r.DocumentName, r.AgenticDocVersion,
		deref(r.InvoiceDateRaw), dateCell(r.InvoiceDate), deref(r.InvoiceNumber),
		deref(r.OrderDate), deref(r.PONumber), deref(r.Status),
		deref(r.SoldToName), deref(r.SoldToAddress), deref(r.CustomerEmail),
		deref(r.SupplierName), deref(r.SupplierAddress), deref(r.Representative),
		deref(r.Email), deref(r.Phone), deref(r.GSTIN), deref(r.PAN),
		deref(r.PaymentTerms), deref(r.ShipVia), deref(r.ShipDate), deref(r.TrackingNumber),
		deref(r.Currency), deref(r.TotalDueRaw), deref(r.TotalDue),
		deref(r.Subtotal), deref(r.Tax), deref(r.Shipping), deref(r.HandlingFee),
	}
}

func lineItemCells(r tables.LineItemRow) []any {
	return []any{
		r.RunID, r.InvoiceUUID, r.DocumentName, r.AgenticDocVersion,
		r.LineIndex, deref(r.LineNumber), deref(r.SKU), deref(r.Description),
		deref(r.Quantity), deref(r.UnitPrice), deref(r.Price), deref(r.Amount), deref(r.Total),
	}
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func dateCell(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format("2006-01-02")
}
