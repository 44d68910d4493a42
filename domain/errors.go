package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrBookNotFound signals a missing book record.
	ErrBookNotFound = errors.New("book not found")
	// ErrInvalidBook signals a book that cannot be exported as requested.
	ErrInvalidBook = errors.New("invalid book")
	// ErrStorageUnavailable signals object storage cannot be reached.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrSearchUnavailable signals the configured search backend cannot serve queries.
	ErrSearchUnavailable = errors.New("search unavailable")
	// ErrSearchNotConfigured signals the external engine is disabled by configuration.
	ErrSearchNotConfigured = fmt.Errorf("%w: elasticsearch is disabled, ELASTICSEARCH_URL is not set", ErrSearchUnavailable)
	// ErrSearchNotInitialized signals the external engine client was never initialized.
	ErrSearchNotInitialized = fmt.Errorf("%w: elasticsearch client is not initialized", ErrSearchUnavailable)
	// ErrMalformedQuery signals a backend rejected a built query.
	ErrMalformedQuery = errors.New("malformed search query")
)

// RepositoryError represents an error from the repository layer.
type RepositoryError struct {
	Op  string
	Err string
}

func (e *RepositoryError) Error() string {
	return e.Op + ": " + e.Err
}

// SearchErrorKind classifies search faults for the caller boundary.
type SearchErrorKind int

const (
	SearchUnavailable SearchErrorKind = iota
	SearchMalformedQuery
)

// SearchError represents a fault raised while executing a search against a backend.
// Empty and overflowing result sets are never SearchErrors.
type SearchError struct {
	Backend string
	Op      string
	Kind    SearchErrorKind
	Err     error
}

func (e *SearchError) Error() string {
	return e.Backend + " " + e.Op + ": " + e.Err.Error()
}

func (e *SearchError) Unwrap() []error {
	if e.Kind == SearchMalformedQuery {
		return []error{ErrMalformedQuery, e.Err}
	}
	return []error{ErrSearchUnavailable, e.Err}
}

// NewSearchError wraps err as a backend fault of the given kind.
func NewSearchError(backend, op string, kind SearchErrorKind, err error) error {
	return &SearchError{Backend: backend, Op: op, Kind: kind, Err: err}
}

// InvalidBookError carries the caller-facing reason a book cannot be exported.
// It matches ErrInvalidBook under errors.Is.
type InvalidBookError struct {
	Reason string
}

func NewInvalidBookError(reason string) error {
	return &InvalidBookError{Reason: reason}
}

func (e *InvalidBookError) Error() string {
	return e.Reason
}

func (e *InvalidBookError) Is(target error) bool {
	return target == ErrInvalidBook
}
