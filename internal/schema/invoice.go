// Package schema defines the invoice extraction contract sent to the
// remote service and the typed record its responses are decoded into.
// Extraction schemas allow at most one level of nested grouping; that
// constraint belongs to the service, and this package is where it is
// checked loudly instead of silently truncated.
package schema

import "encoding/json"

// DocumentInfo groups invoice-level identity fields.
type DocumentInfo struct {
	InvoiceDateRaw *string `json:"invoice_date_raw,omitempty"`
	InvoiceNumber  *string `json:"invoice_number,omitempty"`
	OrderDate      *string `json:"order_date,omitempty"`
	PONumber       *string `json:"po_number,omitempty"`
	Status         *string `json:"status,omitempty"`
}

// CustomerInfo groups the buyer's fields.
type CustomerInfo struct {
	SoldToName    *string `json:"sold_to_name,omitempty"`
	SoldToAddress *string `json:"sold_to_address,omitempty"`
	CustomerEmail *string `json:"customer_email,omitempty"`
}

// SupplierInfo groups the seller's fields.
type SupplierInfo struct {
	SupplierName    *string `json:"supplier_name,omitempty"`
	SupplierAddress *string `json:"supplier_address,omitempty"`
	Representative  *string `json:"representative,omitempty"`
	Email           *string `json:"email,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	GSTIN           *string `json:"gstin,omitempty"`
	PAN             *string `json:"pan,omitempty"`
}

// TermsAndShipping groups order and shipping terms.
type TermsAndShipping struct {
	PaymentTerms   *string `json:"payment_terms,omitempty"`
	ShipVia        *string `json:"ship_via,omitempty"`
	ShipDate       *string `json:"ship_date,omitempty"`
	TrackingNumber *string `json:"tracking_number,omitempty"`
}

// TotalsSummary groups the money fields. Amounts stay as strings exactly as
// the service returned them; typed conversion happens in the table builder.
type TotalsSummary struct {
	Currency    *string `json:"currency,omitempty"`
	TotalDueRaw *string `json:"total_due_raw,omitempty"`
	Subtotal    *string `json:"subtotal,omitempty"`
	Tax         *string `json:"tax,omitempty"`
	Shipping    *string `json:"shipping,omitempty"`
	HandlingFee *string `json:"handling_fee,omitempty"`
}

// LineItem is one element of the invoice's line-item list.
type LineItem struct {
	LineNumber  *string `json:"line_number,omitempty"`
	SKU         *string `json:"sku,omitempty"`
	Description *string `json:"description,omitempty"`
	Quantity    *string `json:"quantity,omitempty"`
	UnitPrice   *string `json:"unit_price,omitempty"`
	Price       *string `json:"price,omitempty"`
	Amount      *string `json:"amount,omitempty"`
	Total       *string `json:"total,omitempty"`
}

// InvoiceExtraction is the typed form of the service's extraction payload:
// five flat groups plus the line-item list. All fields are optional; a
// document that populates none of them still yields a complete table row.
type InvoiceExtraction struct {
	InvoiceInfo  *DocumentInfo     `json:"invoice_info,omitempty"`
	CustomerInfo *CustomerInfo     `json:"customer_info,omitempty"`
	CompanyInfo  *SupplierInfo     `json:"company_info,omitempty"`
	OrderDetails *TermsAndShipping `json:"order_details,omitempty"`
	Totals       *TotalsSummary    `json:"totals_summary,omitempty"`
	LineItems    []LineItem        `json:"line_items,omitempty"`
}

// BuildInvoiceJSONSchema returns the extraction schema (draft 2020-12
// subset) as a generic map. It is serialized and sent to the extract
// endpoint, and also used locally to validate responses.
func BuildInvoiceJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"invoice_info": group(map[string]any{
				"invoice_date_raw": strProp("Invoice date exactly as printed"),
				"invoice_number":   strProp("Invoice number"),
				"order_date":       strProp("Order date"),
				"po_number":        strProp("Purchase order number"),
				"status":           strProp("Invoice status"),
			}),
			"customer_info": group(map[string]any{
				"sold_to_name":    strProp("Customer name"),
				"sold_to_address": strProp("Customer address"),
				"customer_email":  strProp("Customer email"),
			}),
			"company_info": group(map[string]any{
				"supplier_name":    strProp("Supplier name"),
				"supplier_address": strProp("Supplier address"),
				"representative":   strProp("Sales representative"),
				"email":            strProp("Supplier email"),
				"phone":            strProp("Supplier phone"),
				"gstin":            strProp("Supplier GSTIN"),
				"pan":              strProp("Supplier PAN"),
			}),
			"order_details": group(map[string]any{
				"payment_terms":   strProp("Payment terms"),
				"ship_via":        strProp("Shipping carrier"),
				"ship_date":       strProp("Ship date"),
				"tracking_number": strProp("Tracking number"),
			}),
			"totals_summary": group(map[string]any{
				"currency":      strProp("Currency code"),
				"total_due_raw": strProp("Total due exactly as printed"),
				"subtotal":      strProp("Subtotal"),
				"tax":           strProp("Tax"),
				"shipping":      strProp("Shipping cost"),
				"handling_fee":  strProp("Handling fee"),
			}),
			"line_items": map[string]any{
				"type": "array",
				"items": group(map[string]any{
					"line_number": strProp("Line number as printed"),
					"sku":         strProp("Item SKU"),
					"description": strProp("Item description"),
					"quantity":    strProp("Quantity"),
					"unit_price":  strProp("Unit price"),
					"price":       strProp("Price"),
					"amount":      strProp("Amount"),
					"total":       strProp("Line total"),
				}),
			},
		},
	}
}

// MarshalInvoiceJSONSchema serializes the extraction schema for the wire.
func MarshalInvoiceJSONSchema() ([]byte, error) {
	return json.Marshal(BuildInvoiceJSONSchema())
}

func group(props map[string]any) map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}

func strProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}
