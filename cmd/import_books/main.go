package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"library-catalog/internal/config"
	"library-catalog/library"
)

// sampleBooks maps catalog IDs to [title, author].
var sampleBooks = map[string][2]string{
	"B001": {"Java Basics", "John Doe"},
	"B002": {"OOP Guide", "Jane Smith"},
	"B003": {"1984", "George Orwell"},
	"B004": {"Animal Farm", "George Orwell"},
	"B005": {"The Art of War", "Sun Tzu"},
	"B006": {"The Fellowship of the Ring", "J.R.R. Tolkien"},
	"B007": {"The Two Towers", "J.R.R. Tolkien"},
	"B008": {"The Return of the King", "J.R.R. Tolkien"},
	"B009": {"Romeo and Juliet", "William Shakespeare"},
	"B010": {"The Three Musketeers", "Alexandre Dumas"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var store library.Store
	if cfg.Backend == config.BackendSQLite {
		s, err := library.NewSQLiteStore(cfg.DBPath())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
			os.Exit(1)
		}
		store = s
	} else {
		store = library.NewFlatFileStore(cfg.BooksPath(), cfg.LoansPath())
	}

	manager := library.NewLibraryManager(store, logger)
	defer manager.Close()

	// Existing stores are merged into; missing ones are created on save.
	_ = manager.Load()

	ids := make([]string, 0, len(sampleBooks))
	for id := range sampleBooks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Println("Importing sample books...")
	successCount, skipCount := importBooks(manager, ids)

	fmt.Printf("\nImport complete!\n")
	fmt.Printf("Successfully imported: %d books\n", successCount)
	fmt.Printf("Skipped: %d\n", skipCount)

	if err := manager.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving stores: %v\n", err)
		os.Exit(1)
	}
}

func importBooks(manager *library.LibraryManager, ids []string) (imported, skipped int) {
	for _, id := range ids {
		meta := sampleBooks[id]
		fmt.Printf("Importing: %s by %s... ", meta[0], meta[1])
		if err := manager.AddBook(id, meta[0], meta[1]); err != nil {
			fmt.Printf("SKIPPED - %v\n", err)
			skipped++
			continue
		}
		fmt.Println("SUCCESS")
		imported++
	}
	return imported, skipped
}
