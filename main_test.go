package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"library-catalog/library"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatManager(t *testing.T, dir string) *library.LibraryManager {
	t.Helper()
	store := library.NewFlatFileStore(filepath.Join(dir, "books.txt"), filepath.Join(dir, "loans.txt"))
	return library.NewLibraryManager(store, nil)
}

func TestRunDemoFirstRun(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	runDemo(flatManager(t, dir), &out)

	assert.Equal(t, strings.Join([]string{
		"Added book: Java Basics",
		"Added book: OOP Guide",
		"Book borrowed: Java Basics",
		"ID: B001, Title: Java Basics, Author: John Doe, Borrowed: true",
		"Loan: Book ID B001, User: Alice, Date: 2025-09-02",
		"ID: B001, Title: Java Basics, Author: John Doe, Borrowed: true",
		"",
	}, "\n"), out.String())

	books, err := os.ReadFile(filepath.Join(dir, "books.txt"))
	require.NoError(t, err)
	assert.Equal(t, "B001,Java Basics,John Doe,true\nB002,OOP Guide,Jane Smith,false\n", string(books))

	loans, err := os.ReadFile(filepath.Join(dir, "loans.txt"))
	require.NoError(t, err)
	assert.Equal(t, "B001,Alice,2025-09-02\n", string(loans))
}

func TestRunDemoSecondRunStopsOnDuplicate(t *testing.T) {
	dir := t.TempDir()
	runDemo(flatManager(t, dir), &bytes.Buffer{})
	before, err := os.ReadFile(filepath.Join(dir, "books.txt"))
	require.NoError(t, err)

	var out bytes.Buffer
	runDemo(flatManager(t, dir), &out)

	assert.Equal(t, "Error: book ID already exists: B001\n", out.String())
	after, err := os.ReadFile(filepath.Join(dir, "books.txt"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func clearLibraryEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"LIBRARY_DATA_DIR", "LIBRARY_BOOKS_FILE", "LIBRARY_LOANS_FILE", "LIBRARY_BACKEND", "LIBRARY_SQLITE_PATH"} {
		t.Setenv(k, "")
	}
}

func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	clearLibraryEnv(t)
	var stdout, stderr bytes.Buffer
	err := run(&app{out: &stdout}, append([]string{"--data-dir", dir}, args...), &stderr)
	return stdout.String(), err
}

func TestCommandsCirculation(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, dir, "add", "B010", "Go Basics", "Rob Pike")
	require.NoError(t, err)
	assert.Equal(t, "Added book: Go Basics\n", out)

	_, err = execute(t, dir, "add", "B010", "Other", "Someone")
	require.ErrorIs(t, err, library.ErrDuplicateID)

	_, err = execute(t, dir, "add", "B011", "", "Someone")
	require.ErrorIs(t, err, library.ErrInvalidInput)

	out, err = execute(t, dir, "borrow", "B010", "Alice", "2025-09-02")
	require.NoError(t, err)
	assert.Equal(t, "Book borrowed: Go Basics\n", out)

	out, err = execute(t, dir, "borrow", "B010", "Bob", "2025-09-03")
	require.NoError(t, err)
	assert.Equal(t, "Book already borrowed\n", out)

	_, err = execute(t, dir, "borrow", "B999", "Bob", "2025-09-03")
	require.ErrorIs(t, err, library.ErrNotFound)

	out, err = execute(t, dir, "borrowed")
	require.NoError(t, err)
	assert.Equal(t, "ID: B010, Title: Go Basics, Author: Rob Pike, Borrowed: true\n", out)

	out, err = execute(t, dir, "return", "B010")
	require.NoError(t, err)
	assert.Equal(t, "Book returned: Go Basics\n", out)

	out, err = execute(t, dir, "return", "B010")
	require.NoError(t, err)
	assert.Equal(t, "Book is not borrowed: Go Basics\n", out)

	out, err = execute(t, dir, "loans")
	require.NoError(t, err)
	assert.Equal(t, "Loan: Book ID B010, User: Alice, Date: 2025-09-02\n", out)

	out, err = execute(t, dir, "borrowed")
	require.NoError(t, err)
	assert.Equal(t, "No books are borrowed\n", out)
}

func TestCommandsSearchAndRemove(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, dir, "add", "B001", "Java Basics", "John Doe")
	require.NoError(t, err)

	out, err := execute(t, dir, "search", "Java")
	require.NoError(t, err)
	assert.Equal(t, "ID: B001, Title: Java Basics, Author: John Doe, Borrowed: false\n", out)

	out, err = execute(t, dir, "search", "Python")
	require.NoError(t, err)
	assert.Equal(t, "No books found for: Python\n", out)

	out, err = execute(t, dir, "remove", "B001")
	require.NoError(t, err)
	assert.Equal(t, "Removed book: B001\n", out)

	out, err = execute(t, dir, "remove", "B001")
	require.NoError(t, err)
	assert.Equal(t, "Book not found: B001\n", out)

	out, err = execute(t, dir, "loans")
	require.NoError(t, err)
	assert.Equal(t, "No loans\n", out)
}

func TestCommandsSQLiteBackend(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, dir, "--backend", "sqlite", "add", "B001", "Java Basics", "John Doe")
	require.NoError(t, err)
	_, err = execute(t, dir, "--backend", "sqlite", "borrow", "B001", "Alice", "2025-09-02")
	require.NoError(t, err)

	out, err := execute(t, dir, "--backend", "sqlite", "loans")
	require.NoError(t, err)
	assert.Equal(t, "Loan: Book ID B001, User: Alice, Date: 2025-09-02\n", out)

	assert.FileExists(t, filepath.Join(dir, "library.db"))
	assert.NoFileExists(t, filepath.Join(dir, "books.txt"))
}

func TestCommandsRejectUnknownBackend(t *testing.T) {
	_, err := execute(t, t.TempDir(), "--backend", "postgres", "loans")
	assert.Error(t, err)
}

func TestMutatingCommandKeepsUnreadableStore(t *testing.T) {
	dir := t.TempDir()
	booksPath := filepath.Join(dir, "books.txt")
	loansPath := filepath.Join(dir, "loans.txt")
	require.NoError(t, os.Mkdir(booksPath, 0o755))
	require.NoError(t, os.WriteFile(loansPath, []byte("B001,Alice,2025-09-02\n"), 0o644))

	_, err := execute(t, dir, "add", "B010", "Go Basics", "Rob Pike")
	require.Error(t, err)

	info, err := os.Stat(booksPath)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	loans, err := os.ReadFile(loansPath)
	require.NoError(t, err)
	assert.Equal(t, "B001,Alice,2025-09-02\n", string(loans))
}

func TestMutatingCommandCreatesMissingStores(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, dir, "add", "B010", "Go Basics", "Rob Pike")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "books.txt"))
	assert.FileExists(t, filepath.Join(dir, "loans.txt"))
}

func TestRunClosesStoreOnCommandError(t *testing.T) {
	clearLibraryEnv(t)
	a := &app{out: &bytes.Buffer{}}

	err := run(a, []string{"--data-dir", t.TempDir(), "--backend", "sqlite", "borrow", "B999", "Alice", "2025-09-02"}, &bytes.Buffer{})
	require.ErrorIs(t, err, library.ErrNotFound)
	assert.Nil(t, a.manager)
}

func TestBackendFlagOverridesEnv(t *testing.T) {
	clearLibraryEnv(t)
	t.Setenv("LIBRARY_BACKEND", "bogus")
	dir := t.TempDir()

	err := run(&app{out: &bytes.Buffer{}}, []string{"--data-dir", dir, "--backend", "flat", "loans"}, &bytes.Buffer{})
	require.NoError(t, err)

	err = run(&app{out: &bytes.Buffer{}}, []string{"--data-dir", dir, "loans"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestExportJSON(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, dir, "add", "B001", "Java Basics", "John Doe")
	require.NoError(t, err)
	_, err = execute(t, dir, "borrow", "B001", "Alice", "2025-09-02")
	require.NoError(t, err)

	out, err := execute(t, dir, "export")
	require.NoError(t, err)

	var snap library.Snapshot
	require.NoError(t, jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal([]byte(out), &snap))
	require.Len(t, snap.Books, 1)
	assert.True(t, snap.Books[0].Borrowed)
	assert.Equal(t, library.UnknownBorrower, snap.Books[0].Borrower)
	assert.Equal(t, []library.Loan{{BookID: "B001", User: "Alice", Date: "2025-09-02"}}, snap.Loans)
}

func TestExportEmptyCatalog(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, exportJSON(&out, library.Snapshot{}))
	assert.JSONEq(t, `{"books":[],"loans":[]}`, out.String())
}

func TestPrintTable(t *testing.T) {
	books := []library.Book{
		{ID: "B001", Title: "Java Basics", Author: "John Doe", Borrowed: true, Borrower: "Alice"},
		{ID: "B002", Title: "OOP Guide", Author: "Jane Smith"},
	}

	var out bytes.Buffer
	printTable(&out, books, 0)
	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.True(t, strings.HasSuffix(lines[2], "Alice"))
	assert.Contains(t, lines[3], "no")

	out.Reset()
	printTable(&out, books, 20)
	for _, line := range strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n") {
		assert.LessOrEqual(t, len(line), 20)
	}

	out.Reset()
	printTable(&out, nil, 0)
	assert.Equal(t, "No books\n", out.String())
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "hello", truncateString("hello", 0))
	assert.Equal(t, "hello", truncateString("hello", 5))
	assert.Equal(t, "he...", truncateString("hello world", 5))
	assert.Equal(t, "hel", truncateString("hello", 3))

	assert.Equal(t, "Война и мир", truncateString("Война и мир", 11))
	assert.Equal(t, "Войн...", truncateString("Война и мир", 7))
	assert.Equal(t, "Во", truncateString("Война и мир", 2))
	assert.True(t, utf8.ValidString(truncateString("Война и мир", 6)))
}

func TestLineWidthIgnoresNonTerminals(t *testing.T) {
	assert.Zero(t, lineWidth(&bytes.Buffer{}))

	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	require.NoError(t, err)
	defer f.Close()
	assert.Zero(t, lineWidth(f))
}
