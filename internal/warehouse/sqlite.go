package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/ade-labs/invoice-pipeline/constants"
	"github.com/ade-labs/invoice-pipeline/internal/tables"
)

// SQLiteLoader appends row sets to a local SQLite warehouse.
type SQLiteLoader struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (or creates) the SQLite database at path. Use ":memory:"
// for an in-memory warehouse.
func OpenSQLite(path string, logger *slog.Logger) (*SQLiteLoader, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return NewSQLiteLoader(db, logger), nil
}

// NewSQLiteLoader wraps an existing handle.
func NewSQLiteLoader(db *sql.DB, logger *slog.Logger) *SQLiteLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteLoader{db: db, logger: logger}
}

func (l *SQLiteLoader) Close() error { return l.db.Close() }

// EnsureSchema creates the four fixed tables when absent.
func (l *SQLiteLoader) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		createTableSQL(constants.TableMarkdown, constants.MarkdownColumns),
		createTableSQL(constants.TableChunks, constants.ChunkColumns),
		createTableSQL(constants.TableInvoices, constants.InvoiceMainColumns),
		createTableSQL(constants.TableLineItems, constants.LineItemColumns),
	}
	for _, stmt := range stmts {
		if _, err := l.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

// Load inserts every row of the set in one transaction.
func (l *SQLiteLoader) Load(ctx context.Context, set *tables.Set) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qmark := func(int) string { return "?" }

	if err := execRows(ctx, tx, insertSQL(constants.TableMarkdown, constants.MarkdownColumns, qmark),
		set.Markdown, markdownValues); err != nil {
		return err
	}
	if err := execRows(ctx, tx, insertSQL(constants.TableChunks, constants.ChunkColumns, qmark),
		set.Chunks, chunkValues); err != nil {
		return err
	}
	if err := execRows(ctx, tx, insertSQL(constants.TableInvoices, constants.InvoiceMainColumns, qmark),
		set.Invoices, invoiceValues); err != nil {
		return err
	}
	if err := execRows(ctx, tx, insertSQL(constants.TableLineItems, constants.LineItemColumns, qmark),
		set.LineItems, lineItemValues); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	l.logger.Info("warehouse.sqlite.loaded",
		"markdown_rows", len(set.Markdown),
		"chunk_rows", len(set.Chunks),
		"invoice_rows", len(set.Invoices),
		"line_item_rows", len(set.LineItems),
	)
	return nil
}

func execRows[T any](ctx context.Context, tx *sql.Tx, query string, rows []T, values func(T) []any) error {
	if len(rows) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, values(row)...); err != nil {
			return fmt.Errorf("insert: %w", err)
		}
	}
	return nil
}
