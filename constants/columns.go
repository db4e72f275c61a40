package constants

// Warehouse table names. The four tables are the contract with the
// downstream sink; column names and order are fixed regardless of which
// fields a given document's extraction populated.
const (
	TableMarkdown  = "MARKDOWN"
	TableChunks    = "PARSED_CHUNKS"
	TableInvoices  = "INVOICES_MAIN"
	TableLineItems = "INVOICE_LINE_ITEMS"
)

// MarkdownColumns is the fixed column order for the MARKDOWN table.
var MarkdownColumns = []string{
	"RUN_ID", "INVOICE_UUID", "DOCUMENT_NAME", "AGENTIC_DOC_VERSION", "MARKDOWN",
}

// ChunkColumns is the fixed column order for the PARSED_CHUNKS table.
var ChunkColumns = []string{
	"RUN_ID", "INVOICE_UUID", "DOCUMENT_NAME",
	"CHUNK_ID", "CHUNK_TYPE", "TEXT", "PAGE",
	"BOX_L", "BOX_T", "BOX_R", "BOX_B",
}

// InvoiceMainColumns is the fixed column order for the INVOICES_MAIN table.
var InvoiceMainColumns = []string{
	"RUN_ID", "INVOICE_UUID", "DOCUMENT_NAME", "AGENTIC_DOC_VERSION",
	"INVOICE_DATE_RAW", "INVOICE_DATE", "INVOICE_NUMBER", "ORDER_DATE", "PO_NUMBER", "STATUS",
	"SOLD_TO_NAME", "SOLD_TO_ADDRESS", "CUSTOMER_EMAIL",
	"SUPPLIER_NAME", "SUPPLIER_ADDRESS", "REPRESENTATIVE", "EMAIL", "PHONE", "GSTIN", "PAN",
	"PAYMENT_TERMS", "SHIP_VIA", "SHIP_DATE", "TRACKING_NUMBER",
	"CURRENCY", "TOTAL_DUE_RAW", "TOTAL_DUE", "SUBTOTAL", "TAX", "SHIPPING", "HANDLING_FEE",
}

// LineItemColumns is the fixed column order for the INVOICE_LINE_ITEMS table.
var LineItemColumns = []string{
	"RUN_ID", "INVOICE_UUID", "DOCUMENT_NAME", "AGENTIC_DOC_VERSION",
	"LINE_INDEX", "LINE_NUMBER", "SKU", "DESCRIPTION",
	"QUANTITY", "UNIT_PRICE", "PRICE", "AMOUNT", "TOTAL",
}
