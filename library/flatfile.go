package library

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Store persists books and loans as two independent stores. A failure on
// one store must not keep the caller from using the other.
type Store interface {
	LoadBooks() ([]*Book, error)
	LoadLoans() ([]Loan, error)
	SaveBooks(books []*Book) error
	SaveLoans(loans []Loan) error
}

const (
	bookFields = 4
	loanFields = 3
)

// FlatFileStore keeps books and loans in two comma-separated text files,
// one record per line, no header and no quoting. A comma inside a field
// corrupts that line on the next load.
type FlatFileStore struct {
	BooksPath string
	LoansPath string
}

// NewFlatFileStore returns a store over the two given files.
func NewFlatFileStore(booksPath, loansPath string) *FlatFileStore {
	return &FlatFileStore{BooksPath: filepath.Clean(booksPath), LoansPath: filepath.Clean(loansPath)}
}

// ------------------ Books ------------------

// LoadBooks reads id,title,author,borrowed lines. Lines that do not have
// exactly four fields are skipped.
func (s *FlatFileStore) LoadBooks() ([]*Book, error) {
	var books []*Book
	err := readRecords(s.BooksPath, bookFields, func(f []string) {
		books = append(books, &Book{
			ID:       f[0],
			Title:    f[1],
			Author:   f[2],
			Borrowed: strings.EqualFold(f[3], "true"),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load books: %w", err)
	}
	return books, nil
}

// SaveBooks truncates the books file and writes every book.
func (s *FlatFileStore) SaveBooks(books []*Book) error {
	err := writeRecords(s.BooksPath, len(books), func(i int) []string {
		b := books[i]
		return []string{b.ID, b.Title, b.Author, strconv.FormatBool(b.Borrowed)}
	})
	if err != nil {
		return fmt.Errorf("save books: %w", err)
	}
	return nil
}

// ------------------ Loans ------------------

// LoadLoans reads bookId,user,date lines. Lines that do not have exactly
// three fields are skipped.
func (s *FlatFileStore) LoadLoans() ([]Loan, error) {
	var loans []Loan
	err := readRecords(s.LoansPath, loanFields, func(f []string) {
		loans = append(loans, Loan{BookID: f[0], User: f[1], Date: f[2]})
	})
	if err != nil {
		return nil, fmt.Errorf("load loans: %w", err)
	}
	return loans, nil
}

// SaveLoans truncates the loans file and writes every loan in order.
func (s *FlatFileStore) SaveLoans(loans []Loan) error {
	err := writeRecords(s.LoansPath, len(loans), func(i int) []string {
		l := loans[i]
		return []string{l.BookID, l.User, l.Date}
	})
	if err != nil {
		return fmt.Errorf("save loans: %w", err)
	}
	return nil
}

// ------------------ Line codec ------------------

func readRecords(path string, want int, accept func([]string)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return scanRecords(f, want, accept)
}

// scanRecords reads whole lines of any length; a long line is just another
// record to count fields on.
func scanRecords(r io.Reader, want int, accept func([]string)) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
			if fields := splitFields(line); len(fields) == want {
				accept(fields)
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// splitFields splits a line on commas and drops trailing empty fields, so
// "a,b,c," counts as three fields and an empty line as none.
func splitFields(line string) []string {
	fields := strings.Split(line, ",")
	for len(fields) > 0 && fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}
	return fields
}

func writeRecords(path string, n int, record func(int) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for i := 0; i < n; i++ {
		if _, err := w.WriteString(strings.Join(record(i), ",") + "\n"); err != nil {
			f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
