package main

import (
	"fmt"
	"io"

	"library-catalog/library"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

// mutate loads the stores, applies fn and saves only when fn succeeds.
// A store that exists but cannot be read aborts the command so the save
// does not overwrite it.
func (a *app) mutate(fn func() error) error {
	if err := a.manager.Load(); !library.OnlyMissingStores(err) {
		return fmt.Errorf("stores left unchanged: %w", err)
	}
	if err := fn(); err != nil {
		return err
	}
	return a.manager.Save()
}

// query loads the stores before a read-only command.
func (a *app) query(fn func()) {
	_ = a.manager.Load()
	fn()
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add ID TITLE AUTHOR",
		Short: "Add a book",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(func() error { return addBook(a.manager, a.out, args[0], args[1], args[2]) })
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID",
		Short: "Remove a book (its loan history is kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(func() error {
				if a.manager.RemoveBook(args[0]) {
					fmt.Fprintf(a.out, "Removed book: %s\n", args[0])
				} else {
					fmt.Fprintf(a.out, "Book not found: %s\n", args[0])
				}
				return nil
			})
		},
	}
}

func newBorrowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "borrow ID USER DATE",
		Short: "Lend a book to a user",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(func() error { return borrowBook(a.manager, a.out, args[0], args[1], args[2]) })
		},
	}
}

func newReturnCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "return ID",
		Short: "Return a borrowed book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(func() error { return returnBook(a.manager, a.out, args[0]) })
		},
	}
}

func newSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search QUERY",
		Short: "Find books by title substring or exact ID",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a.query(func() { printSearch(a.out, args[0], a.manager.SearchBooks(args[0])) })
		},
	}
}

func newLoansCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "loans",
		Short: "Print the loan history",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			a.query(func() { printLoans(a.out, a.manager.Loans()) })
		},
	}
}

func newBorrowedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "borrowed",
		Short: "List books currently borrowed",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			a.query(func() { printBorrowed(a.out, a.manager.BorrowedBooks()) })
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every book as a table",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			a.query(func() { printTable(a.out, a.manager.GetAllBooks(), lineWidth(a.out)) })
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write the catalog as JSON to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = a.manager.Load()
			return exportJSON(a.out, a.manager.Snapshot())
		},
	}
}

// ------------------ Shared handlers ------------------

func addBook(mgr *library.LibraryManager, out io.Writer, id, title, author string) error {
	if err := mgr.AddBook(id, title, author); err != nil {
		return err
	}
	fmt.Fprintf(out, "Added book: %s\n", title)
	return nil
}

func borrowBook(mgr *library.LibraryManager, out io.Writer, id, user, date string) error {
	ok, err := mgr.BorrowBook(id, user, date)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(out, "Book already borrowed")
		return nil
	}
	b, _ := mgr.GetBook(id)
	fmt.Fprintf(out, "Book borrowed: %s\n", b.Title)
	return nil
}

func returnBook(mgr *library.LibraryManager, out io.Writer, id string) error {
	ok, err := mgr.ReturnBook(id)
	if err != nil {
		return err
	}
	b, _ := mgr.GetBook(id)
	if ok {
		fmt.Fprintf(out, "Book returned: %s\n", b.Title)
	} else {
		fmt.Fprintf(out, "Book is not borrowed: %s\n", b.Title)
	}
	return nil
}

func exportJSON(out io.Writer, snap library.Snapshot) error {
	if snap.Books == nil {
		snap.Books = []library.Book{}
	}
	if snap.Loans == nil {
		snap.Loans = []library.Loan{}
	}
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
