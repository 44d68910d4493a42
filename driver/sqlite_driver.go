package driver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"book-search/logger"

	"github.com/ncruces/go-sqlite3"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// ErrMalformedMatch is returned when SQLite rejects an FTS5 MATCH expression.
var ErrMalformedMatch = errors.New("malformed fts5 match expression")

// SQLiteDriver serves both the books table and its FTS5 index.
type SQLiteDriver struct {
	db *sql.DB
}

func NewSQLiteDriver(db *sql.DB) *SQLiteDriver {
	return &SQLiteDriver{db: db}
}

// OpenSQLite opens the database at dsn and applies connection pragmas.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteDriver, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, &DriverError{Op: "OpenSQLite", Err: "opening database: " + err.Error()}
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 30000",
		"PRAGMA cache_size = -64000",
		"PRAGMA temp_store = memory",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, &DriverError{Op: "OpenSQLite", Err: fmt.Sprintf("applying pragma %q: %v", pragma, err)}
		}
	}

	return &SQLiteDriver{db: db}, nil
}

func (d *SQLiteDriver) Close() {
	if d.db != nil {
		_ = d.db.Close()
	}
}

func (d *SQLiteDriver) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// EnsureBooksTable creates an empty books table when the database has none.
func (d *SQLiteDriver) EnsureBooksTable(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS books (
			id INTEGER PRIMARY KEY,
			author TEXT,
			title TEXT,
			archive_name TEXT,
			file_name TEXT,
			file_size_mb REAL,
			genre TEXT,
			author_first_name TEXT,
			author_last_name TEXT,
			book_title TEXT,
			annotation TEXT,
			lang TEXT,
			publish_book_name TEXT,
			publisher TEXT,
			city TEXT,
			year TEXT,
			isbn TEXT
		)`)
	if err != nil {
		return &DriverError{Op: "EnsureBooksTable", Err: err.Error()}
	}
	return nil
}

// EnsureFTS creates the books_fts index and its sync triggers on first run.
func (d *SQLiteDriver) EnsureFTS(ctx context.Context) error {
	var exists int
	err := d.db.QueryRowContext(ctx,
		`SELECT 1 FROM sqlite_master WHERE type='table' AND name='books_fts' LIMIT 1`).Scan(&exists)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, sql.ErrNoRows):
		logger.Logger.Error("failed to check books_fts existence", "err", err)
		return &DriverError{Op: "EnsureFTS", Err: err.Error()}
	}

	logger.Logger.Info("creating books_fts virtual table")

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return &DriverError{Op: "EnsureFTS", Err: "beginning transaction: " + err.Error()}
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`CREATE VIRTUAL TABLE IF NOT EXISTS books_fts USING fts5(
			title,
			author,
			content='books',
			content_rowid='id'
		)`,
		`INSERT INTO books_fts(books_fts) VALUES('rebuild')`,
		`CREATE TRIGGER IF NOT EXISTS books_ai AFTER INSERT ON books BEGIN
			INSERT INTO books_fts(rowid, title, author) VALUES (new.id, new.title, new.author);
		END`,
		`CREATE TRIGGER IF NOT EXISTS books_ad AFTER DELETE ON books BEGIN
			INSERT INTO books_fts(books_fts, rowid, title, author) VALUES('delete', old.id, old.title, old.author);
		END`,
		`CREATE TRIGGER IF NOT EXISTS books_au AFTER UPDATE ON books BEGIN
			INSERT INTO books_fts(books_fts, rowid, title, author) VALUES('delete', old.id, old.title, old.author);
			INSERT INTO books_fts(rowid, title, author) VALUES (new.id, new.title, new.author);
		END`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			logger.Logger.Error("failed to create books_fts or its triggers", "err", err)
			return &DriverError{Op: "EnsureFTS", Err: err.Error()}
		}
	}

	if err := tx.Commit(); err != nil {
		return &DriverError{Op: "EnsureFTS", Err: "commit: " + err.Error()}
	}
	return nil
}

// MatchBooks runs an FTS5 MATCH expression and returns books ordered by rank.
func (d *SQLiteDriver) MatchBooks(ctx context.Context, match string, limit int) ([]BookRow, error) {
	query := `
		SELECT ` + qualifiedColumns("books") + `
		FROM books
		JOIN books_fts ON books.id = books_fts.rowid
		WHERE books_fts MATCH ?
		ORDER BY rank
		LIMIT ?`

	rows, err := d.db.QueryContext(ctx, query, match, limit)
	if err != nil {
		if isMalformedMatch(err) {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMatch, err)
		}
		return nil, &DriverError{Op: "MatchBooks", Err: err.Error()}
	}
	defer rows.Close()

	books := make([]BookRow, 0, limit)
	for rows.Next() {
		row, err := scanBookRow(rows)
		if err != nil {
			return nil, &DriverError{Op: "MatchBooks", Err: "scanning row: " + err.Error()}
		}
		books = append(books, row)
	}
	if err := rows.Err(); err != nil {
		if isMalformedMatch(err) {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMatch, err)
		}
		return nil, &DriverError{Op: "MatchBooks", Err: err.Error()}
	}
	return books, nil
}

func (d *SQLiteDriver) ReadBookByID(ctx context.Context, id int64) (*BookRow, error) {
	query := `SELECT ` + strings.Join(bookColumns, ", ") + ` FROM books WHERE id = ?`
	row, err := scanBookRow(d.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, &DriverError{Op: "ReadBookByID", Err: err.Error()}
	}
	return &row, nil
}

// FetchBooksByIDs returns the books with the given ids in no particular order.
func (d *SQLiteDriver) FetchBooksByIDs(ctx context.Context, ids []int64) ([]BookRow, error) {
	if len(ids) == 0 {
		return []BookRow{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := `SELECT ` + strings.Join(bookColumns, ", ") + ` FROM books WHERE id IN (` + placeholders + `)`

	rows, err := d.db.QueryContext(ctx, query, args...)
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

// StreamSearchDocuments calls fn for every book projected to id, author and title.
func (d *SQLiteDriver) StreamSearchDocuments(ctx context.Context, fn func(SearchDocumentDriver) error) error {
	rows, err := d.db.QueryContext(ctx, `SELECT id, author, title FROM books ORDER BY id`)
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

func qualifiedColumns(table string) string {
	cols := make([]string, len(bookColumns))
	for i, c := range bookColumns {
		cols[i] = table + "." + c
	}
	return strings.Join(cols, ", ")
}

// isMalformedMatch reports whether err is SQLite refusing the MATCH expression itself.
func isMalformedMatch(err error) bool {
	var serr *sqlite3.Error
	if errors.As(err, &serr) && serr.Code() != sqlite3.ERROR {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "fts5:") ||
		strings.Contains(msg, "no such column") ||
		strings.Contains(msg, "unterminated string")
}
