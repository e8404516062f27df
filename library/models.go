package library

import "fmt"

// UnknownBorrower tags a book that was loaded as borrowed from a store that
// does not record who holds it.
const UnknownBorrower = "Unknown"

// Book represents a catalog entry and its current availability.
// ID is the catalog key and never changes after the book is added.
type Book struct {
	ID       string `json:"id" db:"id"`
	Title    string `json:"title" db:"title"`
	Author   string `json:"author" db:"author"`
	Borrowed bool   `json:"borrowed" db:"borrowed"`
	Borrower string `json:"borrower,omitempty" db:"-"`
}

func (b Book) String() string {
	return fmt.Sprintf("ID: %s, Title: %s, Author: %s, Borrowed: %t", b.ID, b.Title, b.Author, b.Borrowed)
}

// Loan is an append-only record of a successful borrow.
type Loan struct {
	BookID string `json:"book_id" db:"book_id"`
	User   string `json:"user" db:"user"`
	Date   string `json:"date" db:"date"`
}

func (l Loan) String() string {
	return fmt.Sprintf("Loan: Book ID %s, User: %s, Date: %s", l.BookID, l.User, l.Date)
}

// Snapshot is a detached copy of the catalog state, books sorted by ID and
// loans in borrow order.
type Snapshot struct {
	Books []Book `json:"books"`
	Loans []Loan `json:"loans"`
}
