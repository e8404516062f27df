package library

import (
	"fmt"
	"sort"
	"strings"
)

// Catalog holds the book registry and the loan ledger in memory.
// It is not safe for concurrent use.
type Catalog struct {
	books map[string]*Book
	loans []Loan
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{books: make(map[string]*Book)}
}

// ------------------ Books ------------------

// AddBook registers a new available book. All fields are required and the ID
// must not already be in the catalog.
func (c *Catalog) AddBook(id, title, author string) error {
	if id == "" || title == "" || author == "" {
		return ErrInvalidInput
	}
	if _, ok := c.books[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	c.books[id] = &Book{ID: id, Title: title, Author: author}
	return nil
}

// RemoveBook deletes the book and reports whether it was present.
// Loans that reference the book are kept.
func (c *Catalog) RemoveBook(id string) bool {
	if _, ok := c.books[id]; !ok {
		return false
	}
	delete(c.books, id)
	return true
}

// Book returns a copy of the book stored under id.
func (c *Catalog) Book(id string) (Book, bool) {
	b, ok := c.books[id]
	if !ok {
		return Book{}, false
	}
	return *b, true
}

// Books returns every book sorted by ID.
func (c *Catalog) Books() []Book {
	return c.collect(func(*Book) bool { return true })
}

// Len reports the number of books.
func (c *Catalog) Len() int { return len(c.books) }

// ------------------ Circulation ------------------

// BorrowBook lends the book to user. It returns false without recording a
// loan when the book is already out.
func (c *Catalog) BorrowBook(id, user, date string) (bool, error) {
	b, ok := c.books[id]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if b.Borrowed {
		return false, nil
	}
	b.Borrowed = true
	b.Borrower = user
	c.loans = append(c.loans, Loan{BookID: id, User: user, Date: date})
	return true, nil
}

// ReturnBook marks the book available again. It returns false when the book
// was not borrowed. Loan history is left as is.
func (c *Catalog) ReturnBook(id string) (bool, error) {
	b, ok := c.books[id]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !b.Borrowed {
		return false, nil
	}
	b.Borrowed = false
	b.Borrower = ""
	return true, nil
}

// ------------------ Queries ------------------

// Search returns books whose title contains query or whose ID equals it.
// Matching is case-sensitive; an empty query matches every book.
func (c *Catalog) Search(query string) []Book {
	return c.collect(func(b *Book) bool {
		return strings.Contains(b.Title, query) || b.ID == query
	})
}

// Borrowed returns the books currently out, sorted by ID.
func (c *Catalog) Borrowed() []Book {
	return c.collect(func(b *Book) bool { return b.Borrowed })
}

// Loans returns the loan history in borrow order.
func (c *Catalog) Loans() []Loan {
	out := make([]Loan, len(c.loans))
	copy(out, c.loans)
	return out
}

// Snapshot copies the full catalog state.
func (c *Catalog) Snapshot() Snapshot {
	return Snapshot{Books: c.Books(), Loans: c.Loans()}
}

func (c *Catalog) collect(keep func(*Book) bool) []Book {
	var out []Book
	for _, b := range c.books {
		if keep(b) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ------------------ Restore ------------------

// restoreBook inserts or replaces a book read from a store. A borrowed book
// gets UnknownBorrower since stores do not keep the borrower.
func (c *Catalog) restoreBook(b *Book) {
	rec := &Book{ID: b.ID, Title: b.Title, Author: b.Author, Borrowed: b.Borrowed}
	if rec.Borrowed {
		rec.Borrower = UnknownBorrower
	}
	c.books[rec.ID] = rec
}

// restoreLoans appends loans read from a store to the history.
func (c *Catalog) restoreLoans(loans []Loan) {
	c.loans = append(c.loans, loans...)
}
