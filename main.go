package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"library-catalog/internal/config"
	"library-catalog/library"

	"github.com/spf13/cobra"
)

// app carries what every command needs once the stores are opened.
type app struct {
	cfg     *config.Config
	manager *library.LibraryManager
	out     io.Writer
	logger  *slog.Logger

	dataDir string
	backend string
	verbose bool
}

func main() {
	if err := run(&app{out: os.Stdout}, os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes one command line and closes the store whether or not the
// command failed. Cobra skips post-run hooks on error, so closing lives here.
func run(a *app, args []string, stderr io.Writer) error {
	defer a.close()

	root := newRootCmd(a, stderr)
	root.SetArgs(args)
	return root.Execute()
}

func newRootCmd(a *app, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "library",
		Short: "Track a small library's books and loans in flat files",
		Long: "Without a subcommand, runs the demo workflow: load the stores, add two sample\n" +
			"books, borrow one, search, print loans and borrowed books, then save.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(stderr)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			runDemo(a.manager, a.out)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "directory holding the stores (overrides LIBRARY_DATA_DIR)")
	root.PersistentFlags().StringVar(&a.backend, "backend", "", "store backend: flat or sqlite (overrides LIBRARY_BACKEND)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log debug output")

	root.AddCommand(
		newAddCmd(a),
		newRemoveCmd(a),
		newBorrowCmd(a),
		newReturnCmd(a),
		newSearchCmd(a),
		newLoansCmd(a),
		newBorrowedCmd(a),
		newListCmd(a),
		newExportCmd(a),
	)
	return root
}

// open resolves configuration, builds the logger and opens the store.
// Flags override the environment before anything is validated.
func (a *app) open(stderr io.Writer) error {
	cfg := config.Read()
	if a.dataDir != "" {
		cfg.DataDir = a.dataDir
	}
	if a.backend != "" {
		cfg.Backend = a.backend
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	var store library.Store
	switch cfg.Backend {
	case config.BackendSQLite:
		s, err := library.NewSQLiteStore(cfg.DBPath())
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		store = s
		a.logger.Debug("using sqlite store", "path", cfg.DBPath())
	default:
		store = library.NewFlatFileStore(cfg.BooksPath(), cfg.LoansPath())
		a.logger.Debug("using flat file store", "books", cfg.BooksPath(), "loans", cfg.LoansPath())
	}

	a.manager = library.NewLibraryManager(store, a.logger)
	return nil
}

// close releases the store; it is safe to call when open never ran.
func (a *app) close() error {
	if a.manager == nil {
		return nil
	}
	err := a.manager.Close()
	a.manager = nil
	return err
}

// runDemo loads the stores, seeds two books, borrows one, searches, prints
// loans and borrowed books, and saves. The first catalog error is reported
// and ends the run without saving.
func runDemo(mgr *library.LibraryManager, out io.Writer) {
	// Store errors are already logged; an unreadable store leaves it empty.
	_ = mgr.Load()

	steps := []func() error{
		func() error { return addBook(mgr, out, "B001", "Java Basics", "John Doe") },
		func() error { return addBook(mgr, out, "B002", "OOP Guide", "Jane Smith") },
		func() error { return borrowBook(mgr, out, "B001", "Alice", "2025-09-02") },
		func() error { printSearch(out, "Java", mgr.SearchBooks("Java")); return nil },
		func() error { printLoans(out, mgr.Loans()); return nil },
		func() error { printBorrowed(out, mgr.BorrowedBooks()); return nil },
		func() error { _ = mgr.Save(); return nil },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
	}
}
