package warehouse

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ade-labs/invoice-pipeline/constants"
	"github.com/ade-labs/invoice-pipeline/internal/tables"
)

// PGConfig mirrors the connection tunables we expose for a Postgres sink.
type PGConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	DialTimeout     time.Duration
}

// pgPool is the slice of pgxpool.Pool the loader needs.
type pgPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// PGLoader appends row sets to a Postgres warehouse using batched inserts.
type PGLoader struct {
	pool   pgPool
	logger *slog.Logger
}

// NewPGLoader wraps an existing pool.
func NewPGLoader(pool pgPool, logger *slog.Logger) *PGLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &PGLoader{pool: pool, logger: logger}
}

// OpenPostgres creates a pgx pool for the warehouse.
func OpenPostgres(ctx context.Context, cfg PGConfig, logger *slog.Logger) (*PGLoader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "invoice-pipeline"

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	logger.Info("warehouse.postgres.connected")
	return NewPGLoader(pool, logger), nil
}

func (l *PGLoader) Close() { l.pool.Close() }

// EnsureSchema creates the four fixed tables when absent.
func (l *PGLoader) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		createTableSQL(constants.TableMarkdown, constants.MarkdownColumns),
		createTableSQL(constants.TableChunks, constants.ChunkColumns),
		createTableSQL(constants.TableInvoices, constants.InvoiceMainColumns),
		createTableSQL(constants.TableLineItems, constants.LineItemColumns),
	}
	for _, stmt := range stmts {
		if _, err := l.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

// Load sends every row of the set in one pgx batch inside a transaction.
func (l *PGLoader) Load(ctx context.Context, set *tables.Set) error {
	dollar := func(i int) string { return fmt.Sprintf("$%d", i) }

	batch := &pgx.Batch{}
	queueRows(batch, insertSQL(constants.TableMarkdown, constants.MarkdownColumns, dollar),
		set.Markdown, markdownValues)
	queueRows(batch, insertSQL(constants.TableChunks, constants.ChunkColumns, dollar),
		set.Chunks, chunkValues)
	queueRows(batch, insertSQL(constants.TableInvoices, constants.InvoiceMainColumns, dollar),
		set.Invoices, invoiceValues)
	queueRows(batch, insertSQL(constants.TableLineItems, constants.LineItemColumns, dollar),
		set.LineItems, lineItemValues)

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("batch insert: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	l.logger.Info("warehouse.postgres.loaded",
		"markdown_rows", len(set.Markdown),
		"chunk_rows", len(set.Chunks),
		"invoice_rows", len(set.Invoices),
		"line_item_rows", len(set.LineItems),
	)
	return nil
}

func queueRows[T any](batch *pgx.Batch, query string, rows []T, values func(T) []any) {
	for _, row := range rows {
		batch.Queue(query, values(row)...)
	}
}
