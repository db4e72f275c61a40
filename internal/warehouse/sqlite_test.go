package warehouse

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ade-labs/invoice-pipeline/constants"
	"github.com/ade-labs/invoice-pipeline/internal/tables"
)

func newMockLoader(t *testing.T) (*SQLiteLoader, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteLoader(db, nil), mock
}

func qmark(int) string { return "?" }

func TestCreateTableSQL(t *testing.T) {
	got := createTableSQL("PARSED_CHUNKS", []string{"RUN_ID", "PAGE", "BOX_L"})
	assert.Equal(t,
		"CREATE TABLE IF NOT EXISTS PARSED_CHUNKS (RUN_ID TEXT, PAGE INTEGER, BOX_L REAL)",
		got)
}

func TestInsertSQL(t *testing.T) {
	got := insertSQL("MARKDOWN", []string{"A", "B"}, qmark)
	assert.Equal(t, "INSERT INTO MARKDOWN (A, B) VALUES (?, ?)", got)
}

func TestEnsureSchemaCreatesAllTables(t *testing.T) {
	loader, mock := newMockLoader(t)

	for _, stmt := range []string{
		createTableSQL(constants.TableMarkdown, constants.MarkdownColumns),
		createTableSQL(constants.TableChunks, constants.ChunkColumns),
		createTableSQL(constants.TableInvoices, constants.InvoiceMainColumns),
		createTableSQL(constants.TableLineItems, constants.LineItemColumns),
	} {
		mock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, loader.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadInsertsRowsInOneTransaction(t *testing.T) {
	loader, mock := newMockLoader(t)

	date := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	num := "INV-001"
	set := &tables.Set{
		Markdown: []tables.MarkdownRow{{
			RunID: "run-1", InvoiceUUID: "doc-1", DocumentName: "inv.pdf",
			AgenticDocVersion: "v1", Markdown: "# Invoice",
		}},
		Invoices: []tables.InvoiceMainRow{{
			RunID: "run-1", InvoiceUUID: "doc-1", DocumentName: "inv.pdf",
			AgenticDocVersion: "v1", InvoiceNumber: &num, InvoiceDate: &date,
		}},
	}

	mock.ExpectBegin()

	mdInsert := mock.ExpectPrepare(insertSQL(constants.TableMarkdown, constants.MarkdownColumns, qmark))
	mdInsert.ExpectExec().
		WithArgs("run-1", "doc-1", "inv.pdf", "v1", "# Invoice").
		WillReturnResult(sqlmock.NewResult(1, 1))

	// empty families are skipped, so no PARSED_CHUNKS statement here
	invInsert := mock.ExpectPrepare(insertSQL(constants.TableInvoices, constants.InvoiceMainColumns, qmark))
	invInsert.ExpectExec().WillReturnResult(sqlmock.NewResult(1, 1))

	mock.ExpectCommit()

	require.NoError(t, loader.Load(context.Background(), set))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadRollsBackOnInsertError(t *testing.T) {
	loader, mock := newMockLoader(t)

	set := &tables.Set{
		Markdown: []tables.MarkdownRow{{RunID: "run-1", InvoiceUUID: "doc-1"}},
	}

	mock.ExpectBegin()
	mdInsert := mock.ExpectPrepare(insertSQL(constants.TableMarkdown, constants.MarkdownColumns, qmark))
	mdInsert.ExpectExec().WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := loader.Load(context.Background(), set)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNullableColumnsLowerToNil(t *testing.T) {
	vals := invoiceValues(tables.InvoiceMainRow{RunID: "r", InvoiceUUID: "u"})
	require.Len(t, vals, len(constants.InvoiceMainColumns))
	assert.Equal(t, "r", vals[0])
	assert.Nil(t, vals[4]) // INVOICE_DATE_RAW
	assert.Nil(t, vals[5]) // INVOICE_DATE

	date := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	vals = invoiceValues(tables.InvoiceMainRow{InvoiceDate: &date})
	assert.Equal(t, "2025-01-15", vals[5])
}
