package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	BackendFlat   = "flat"
	BackendSQLite = "sqlite"
)

// Config holds where the catalog is persisted.
type Config struct {
	DataDir    string
	BooksFile  string
	LoansFile  string
	Backend    string
	SQLitePath string
}

// Load reads the configuration with Read and validates it.
func Load() (*Config, error) {
	cfg := Read()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read reads an optional .env file, then the LIBRARY_* environment
// variables, without validating. Unset values fall back to books.txt and
// loans.txt in the working directory. Callers that override fields call
// Validate afterwards.
func Read() *Config {
	// A missing .env is normal; the environment alone is enough.
	_ = godotenv.Load()

	return &Config{
		DataDir:    withDefault(os.Getenv("LIBRARY_DATA_DIR"), "."),
		BooksFile:  withDefault(os.Getenv("LIBRARY_BOOKS_FILE"), "books.txt"),
		LoansFile:  withDefault(os.Getenv("LIBRARY_LOANS_FILE"), "loans.txt"),
		Backend:    strings.ToLower(withDefault(os.Getenv("LIBRARY_BACKEND"), BackendFlat)),
		SQLitePath: withDefault(os.Getenv("LIBRARY_SQLITE_PATH"), "library.db"),
	}
}

// Validate normalizes the backend name and rejects unknown ones.
func (c *Config) Validate() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	switch c.Backend {
	case BackendFlat, BackendSQLite:
		return nil
	default:
		return fmt.Errorf("unknown backend %q (want %q or %q)", c.Backend, BackendFlat, BackendSQLite)
	}
}

// BooksPath is the books store file resolved against DataDir.
func (c *Config) BooksPath() string { return resolvePath(c.DataDir, c.BooksFile) }

// LoansPath is the loans store file resolved against DataDir.
func (c *Config) LoansPath() string { return resolvePath(c.DataDir, c.LoansFile) }

// DBPath is the SQLite file resolved against DataDir.
func (c *Config) DBPath() string { return resolvePath(c.DataDir, c.SQLitePath) }

func withDefault(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}

func resolvePath(dir, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, p)
}
