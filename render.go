package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"library-catalog/library"

	"golang.org/x/term"
)

// lineWidth returns the terminal width when out is a terminal, or 0 when
// output should not be truncated.
func lineWidth(out io.Writer) int {
	f, ok := out.(*os.File)
	if !ok {
		return 0
	}
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return w
}

func printSearch(out io.Writer, query string, books []library.Book) {
	if len(books) == 0 {
		fmt.Fprintf(out, "No books found for: %s\n", query)
		return
	}
	for _, b := range books {
		fmt.Fprintln(out, b)
	}
}

func printLoans(out io.Writer, loans []library.Loan) {
	if len(loans) == 0 {
		fmt.Fprintln(out, "No loans")
		return
	}
	for _, l := range loans {
		fmt.Fprintln(out, l)
	}
}

func printBorrowed(out io.Writer, books []library.Book) {
	if len(books) == 0 {
		fmt.Fprintln(out, "No books are borrowed")
		return
	}
	for _, b := range books {
		fmt.Fprintln(out, b)
	}
}

// printTable lists books in columns, cutting rows to width when width > 0.
func printTable(out io.Writer, books []library.Book, width int) {
	if len(books) == 0 {
		fmt.Fprintln(out, "No books")
		return
	}
	header := prettyRow("ID", "Title", "Author", "Borrowed", "Borrower")
	fmt.Fprintln(out, truncateString(header, width))
	fmt.Fprintln(out, truncateString(strings.Repeat("-", len(header)), width))
	for _, b := range books {
		borrowed := "no"
		if b.Borrowed {
			borrowed = "yes"
		}
		fmt.Fprintln(out, truncateString(prettyRow(b.ID, b.Title, b.Author, borrowed, b.Borrower), width))
	}
}

func prettyRow(id, title, author, borrowed, borrower string) string {
	return strings.TrimRight(fmt.Sprintf("%-8s %-30s %-25s %-9s %s", id, title, author, borrowed, borrower), " ")
}

// truncateString cuts s to maxLen runes, never inside a multi-byte rune.
func truncateString(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	r := []rune(s)
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
