package library

import "errors"

// Sentinel errors returned by catalog operations.
var (
	// ErrInvalidInput is returned when a required book field is empty.
	ErrInvalidInput = errors.New("book details cannot be empty")

	// ErrDuplicateID is returned when adding a book whose ID is already present.
	ErrDuplicateID = errors.New("book ID already exists")

	// ErrNotFound is returned when an operation references an unknown book ID.
	ErrNotFound = errors.New("book not found")
)
