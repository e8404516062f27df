package library

import (
	"errors"
	"io"
	"log/slog"
	"os"
)

// LibraryManager is a thin façade that pairs a Catalog with the Store it is
// loaded from and saved to, keeping CLI code simple.
type LibraryManager struct {
	catalog *Catalog
	store   Store
	logger  *slog.Logger
}

// NewLibraryManager returns a manager over an empty catalog. A nil logger
// discards store diagnostics.
func NewLibraryManager(store Store, logger *slog.Logger) *LibraryManager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LibraryManager{catalog: NewCatalog(), store: store, logger: logger}
}

// Close closes the underlying store when it holds resources.
func (lm *LibraryManager) Close() error {
	if c, ok := lm.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Catalog exposes the in-memory catalog.
func (lm *LibraryManager) Catalog() *Catalog { return lm.catalog }

// ------------------ Persistence ------------------

// Load reads both stores into the catalog. A store that cannot be read is
// logged and reported in the returned error; the other store is still read.
// Books already in the catalog are replaced by stored books with the same ID
// and stored loans are appended to the history.
func (lm *LibraryManager) Load() error {
	var errs []error

	books, err := lm.store.LoadBooks()
	if err != nil {
		lm.logger.Error("error loading books", "err", err)
		errs = append(errs, err)
	} else {
		for _, b := range books {
			lm.catalog.restoreBook(b)
		}
		lm.logger.Info("books loaded", "count", len(books))
	}

	loans, err := lm.store.LoadLoans()
	if err != nil {
		lm.logger.Error("error loading loans", "err", err)
		errs = append(errs, err)
	} else {
		lm.catalog.restoreLoans(loans)
		lm.logger.Info("loans loaded", "count", len(loans))
	}

	return errors.Join(errs...)
}

// OnlyMissingStores reports whether every error joined into err is a store
// file that does not exist yet. Saving after such a Load loses nothing.
func OnlyMissingStores(err error) bool {
	if err == nil {
		return true
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if !OnlyMissingStores(e) {
				return false
			}
		}
		return true
	}
	return errors.Is(err, os.ErrNotExist)
}

// Save overwrites both stores with the catalog contents. A failure on the
// books store does not stop the loans store from being written.
func (lm *LibraryManager) Save() error {
	var errs []error

	snap := lm.catalog.Snapshot()
	books := make([]*Book, len(snap.Books))
	for i := range snap.Books {
		books[i] = &snap.Books[i]
	}

	if err := lm.store.SaveBooks(books); err != nil {
		lm.logger.Error("error saving books", "err", err)
		errs = append(errs, err)
	} else {
		lm.logger.Info("books saved", "count", len(books))
	}

	if err := lm.store.SaveLoans(snap.Loans); err != nil {
		lm.logger.Error("error saving loans", "err", err)
		errs = append(errs, err)
	} else {
		lm.logger.Info("loans saved", "count", len(snap.Loans))
	}

	return errors.Join(errs...)
}

// ------------------ Book helpers ------------------

func (lm *LibraryManager) AddBook(id, title, author string) error {
	return lm.catalog.AddBook(id, title, author)
}

func (lm *LibraryManager) RemoveBook(id string) bool      { return lm.catalog.RemoveBook(id) }
func (lm *LibraryManager) GetBook(id string) (Book, bool) { return lm.catalog.Book(id) }
func (lm *LibraryManager) GetAllBooks() []Book            { return lm.catalog.Books() }

// ------------------ Circulation ------------------

func (lm *LibraryManager) BorrowBook(id, user, date string) (bool, error) {
	return lm.catalog.BorrowBook(id, user, date)
}

func (lm *LibraryManager) ReturnBook(id string) (bool, error) {
	return lm.catalog.ReturnBook(id)
}

// ------------------ Queries ------------------

func (lm *LibraryManager) SearchBooks(q string) []Book { return lm.catalog.Search(q) }
func (lm *LibraryManager) BorrowedBooks() []Book       { return lm.catalog.Borrowed() }
func (lm *LibraryManager) Loans() []Loan               { return lm.catalog.Loans() }
func (lm *LibraryManager) Snapshot() Snapshot          { return lm.catalog.Snapshot() }
