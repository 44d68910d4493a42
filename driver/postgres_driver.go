package driver

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxIface is the subset of pgxpool.Pool used by PostgresDriver.
type PgxIface interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresDriver reads books from a Postgres primary store.
type PostgresDriver struct {
	pool PgxIface
}

func NewPostgresDriver(pool PgxIface) *PostgresDriver {
	return &PostgresDriver{pool: pool}
}

// OpenPostgres creates a connection pool for dsn without waiting for the server.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresDriver, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, &DriverError{Op: "OpenPostgres", Err: "parsing dsn: " + err.Error()}
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, &DriverError{Op: "OpenPostgres", Err: err.Error()}
	}
	return &PostgresDriver{pool: pool}, nil
}

func (d *PostgresDriver) Close() {
	d.pool.Close()
}

func (d *PostgresDriver) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

func (d *PostgresDriver) ReadBookByID(ctx context.Context, id int64) (*BookRow, error) {
	query := `SELECT ` + strings.Join(bookColumns, ", ") + ` FROM books WHERE id = $1`
	row, err := scanBookRow(d.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, &DriverError{Op: "ReadBookByID", Err: err.Error()}
	}
	return &row, nil
}

func (d *PostgresDriver) FetchBooksByIDs(ctx context.Context, ids []int64) ([]BookRow, error) {
	if len(ids) == 0 {
		return []BookRow{}, nil
	}

	query := `SELECT ` + strings.Join(bookColumns, ", ") + ` FROM books WHERE id = ANY($1)`
	rows, err := d.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, &DriverError{Op: "FetchBooksByIDs", Err: err.Error()}
	}
	defer rows.Close()

	books := make([]BookRow, 0, len(ids))
	for rows.Next() {
		row, err := scanBookRow(rows)
		if err != nil {
			return nil, &DriverError{Op: "FetchBooksByIDs", Err: "scanning row: " + err.Error()}
		}
		books = append(books, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &DriverError{Op: "FetchBooksByIDs", Err: err.Error()}
	}
	return books, nil
}

func (d *PostgresDriver) StreamSearchDocuments(ctx context.Context, fn func(SearchDocumentDriver) error) error {
	rows, err := d.pool.Query(ctx, `SELECT id, author, title FROM books ORDER BY id`)
	if err != nil {
		return &DriverError{Op: "StreamSearchDocuments", Err: err.Error()}
	}
	defer rows.Close()

	for rows.Next() {
		doc, err := scanSearchDocument(rows)
		if err != nil {
			return &DriverError{Op: "StreamSearchDocuments", Err: "scanning row: " + err.Error()}
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return &DriverError{Op: "StreamSearchDocuments", Err: err.Error()}
	}
	return nil
}
