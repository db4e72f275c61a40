package tables

import (
	"github.com/google/uuid"

	"github.com/ade-labs/invoice-pipeline/internal/ade"
	"github.com/ade-labs/invoice-pipeline/internal/schema"
)

// Pair is one document's parse and extract results.
type Pair struct {
	Parse   *ade.ParseResponse
	Extract *ade.ExtractResponse
}

// Build flattens one or many result pairs into the four row families.
// All rows from one invocation share runID (generated when empty); all
// rows derived from the same pair share a fresh invoice UUID. Chunk and
// line-item ordering is preserved from the source.
func Build(pairs []Pair, runID string) (*Set, error) {
	if runID == "" {
		runID = uuid.New().String()
	}

	set := &Set{}
	for _, p := range pairs {
		if err := appendPair(set, p, runID); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// BuildOne is the single-document convenience form of Build.
func BuildOne(parse *ade.ParseResponse, extract *ade.ExtractResponse, runID string) (*Set, error) {
	return Build([]Pair{{Parse: parse, Extract: extract}}, runID)
}

func appendPair(set *Set, p Pair, runID string) error {
	invoiceUUID := uuid.New().String()

	documentName := "unknown"
	version := "unknown"
	if p.Parse != nil {
		if p.Parse.Metadata.Filename != "" {
			documentName = p.Parse.Metadata.Filename
		}
		if p.Parse.Metadata.Version != "" {
			version = p.Parse.Metadata.Version
		}
	}

	var markdown string
	if p.Parse != nil {
		markdown = p.Parse.Markdown
	}
	set.Markdown = append(set.Markdown, MarkdownRow{
		RunID:             runID,
		InvoiceUUID:       invoiceUUID,
		DocumentName:      documentName,
		AgenticDocVersion: version,
		Markdown:          markdown,
	})

	if p.Parse != nil {
		for _, chunk := range p.Parse.Chunks {
			row := ChunkRow{
				RunID:        runID,
				InvoiceUUID:  invoiceUUID,
				DocumentName: documentName,
				ChunkID:      optString(chunk.ID),
				ChunkType:    optString(chunk.Type),
				Text:         optString(chunk.Markdown),
			}
			if g := chunk.Grounding; g != nil {
				page := g.Page
				row.Page = &page
				if box := g.Box; box != nil {
					l, t, r, b := box.Left, box.Top, box.Right, box.Bottom
					row.BoxL, row.BoxT, row.BoxR, row.BoxB = &l, &t, &r, &b
				}
			}
			set.Chunks = append(set.Chunks, row)
		}
	}

	extraction := &schema.InvoiceExtraction{}
	if p.Extract != nil {
		decoded, err := schema.DecodeExtraction(p.Extract.Extraction)
		if err != nil {
			return err
		}
		extraction = decoded
	}

	main := InvoiceMainRow{
		RunID:             runID,
		InvoiceUUID:       invoiceUUID,
		DocumentName:      documentName,
		AgenticDocVersion: version,
	}
	if info := extraction.InvoiceInfo; info != nil {
		main.InvoiceDateRaw = info.InvoiceDateRaw
		main.InvoiceDate = parseDate(info.InvoiceDateRaw)
		main.InvoiceNumber = info.InvoiceNumber
		main.OrderDate = info.OrderDate
		main.PONumber = info.PONumber
		main.Status = info.Status
	}
	if c := extraction.CustomerInfo; c != nil {
		main.SoldToName = c.SoldToName
		main.SoldToAddress = c.SoldToAddress
		main.CustomerEmail = c.CustomerEmail
	}
	if s := extraction.CompanyInfo; s != nil {
		main.SupplierName = s.SupplierName
		main.SupplierAddress = s.SupplierAddress
		main.Representative = s.Representative
		main.Email = s.Email
		main.Phone = s.Phone
		main.GSTIN = s.GSTIN
		main.PAN = s.PAN
	}
	if o := extraction.OrderDetails; o != nil {
		main.PaymentTerms = o.PaymentTerms
		main.ShipVia = o.ShipVia
		main.ShipDate = o.ShipDate
		main.TrackingNumber = o.TrackingNumber
	}
	if t := extraction.Totals; t != nil {
		main.Currency = t.Currency
		main.TotalDueRaw = t.TotalDueRaw
		main.TotalDue = parseAmount(t.TotalDueRaw)
		main.Subtotal = t.Subtotal
		main.Tax = t.Tax
		main.Shipping = t.Shipping
		main.HandlingFee = t.HandlingFee
	}
	set.Invoices = append(set.Invoices, main)

	for idx, item := range extraction.LineItems {
		set.LineItems = append(set.LineItems, LineItemRow{
			RunID:             runID,
			InvoiceUUID:       invoiceUUID,
			DocumentName:      documentName,
			AgenticDocVersion: version,
			LineIndex:         idx,
			LineNumber:        item.LineNumber,
			SKU:               item.SKU,
			Description:       item.Description,
			Quantity:          item.Quantity,
			UnitPrice:         item.UnitPrice,
			Price:             item.Price,
			Amount:            item.Amount,
			Total:             item.Total,
		})
	}

	return nil
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
