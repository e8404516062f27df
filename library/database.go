package library

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const (
	dialectSQLite = "sqlite3"

	tableBooks = "books"
	tableLoans = "loans"

	colID       = "id"
	colTitle    = "title"
	colAuthor   = "author"
	colBorrowed = "borrowed"
	colSeq      = "seq"
	colBookID   = "book_id"
	colUser     = "user"
	colDate     = "date"
)

// SQLiteStore keeps the books and loans stores as two tables in a SQLite
// file. It stores the same fields as FlatFileStore, so the borrower of a
// borrowed book is not kept here either.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) the SQLite database at dbPath and
// applies schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the DB.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sqlx.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS books (
            id TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            author TEXT NOT NULL,
            borrowed BOOLEAN NOT NULL DEFAULT 0
        );`,
		// No foreign key: loans outlive removed books.
		`CREATE TABLE IF NOT EXISTS loans (
            seq INTEGER PRIMARY KEY AUTOINCREMENT,
            book_id TEXT NOT NULL,
            "user" TEXT NOT NULL,
            "date" TEXT NOT NULL
        );`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Books
// ---------------------------------------------------------------------------

// LoadBooks returns every row of the books table ordered by ID.
func (s *SQLiteStore) LoadBooks() ([]*Book, error) {
	query, _, err := goqu.Dialect(dialectSQLite).
		From(tableBooks).
		Select(colID, colTitle, colAuthor, colBorrowed).
		Order(goqu.I(colID).Asc()).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("load books: build query: %w", err)
	}

	var books []*Book
	if err := s.db.Select(&books, query); err != nil {
		return nil, fmt.Errorf("load books: %w", err)
	}
	return books, nil
}

// SaveBooks replaces the books table with the given books.
func (s *SQLiteStore) SaveBooks(books []*Book) error {
	rows := make([][]interface{}, 0, len(books))
	for _, b := range books {
		rows = append(rows, goqu.Vals{b.ID, b.Title, b.Author, b.Borrowed})
	}
	if err := s.replace(tableBooks, []interface{}{colID, colTitle, colAuthor, colBorrowed}, rows); err != nil {
		return fmt.Errorf("save books: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Loans
// ---------------------------------------------------------------------------

// LoadLoans returns the loans table in insertion order.
func (s *SQLiteStore) LoadLoans() ([]Loan, error) {
	query, _, err := goqu.Dialect(dialectSQLite).
		From(tableLoans).
		Select(colBookID, colUser, colDate).
		Order(goqu.I(colSeq).Asc()).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("load loans: build query: %w", err)
	}

	var loans []Loan
	if err := s.db.Select(&loans, query); err != nil {
		return nil, fmt.Errorf("load loans: %w", err)
	}
	return loans, nil
}

// SaveLoans replaces the loans table, keeping the given order.
func (s *SQLiteStore) SaveLoans(loans []Loan) error {
	rows := make([][]interface{}, 0, len(loans))
	for _, l := range loans {
		rows = append(rows, goqu.Vals{l.BookID, l.User, l.Date})
	}
	if err := s.replace(tableLoans, []interface{}{colBookID, colUser, colDate}, rows); err != nil {
		return fmt.Errorf("save loans: %w", err)
	}
	return nil
}

// insertBatchSize keeps each INSERT under SQLite's bound-variable limit.
const insertBatchSize = 200

// replace empties table and inserts rows in one transaction.
func (s *SQLiteStore) replace(table string, cols []interface{}, rows [][]interface{}) error {
	builder := goqu.Dialect(dialectSQLite)

	deleteSQL, _, err := builder.Delete(table).ToSQL()
	if err != nil {
		return err
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(deleteSQL); err != nil {
		return err
	}

	for start := 0; start < len(rows); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		insertSQL, args, err := builder.
			Insert(table).
			Cols(cols...).
			Vals(rows[start:end]...).
			Prepared(true).
			ToSQL()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(insertSQL, args...); err != nil {
			return err
		}
	}

	return tx.Commit()
}
