package store

import (
	"context"
	"errors"
	"fmt"
)

// Page is one fetched document: the raw table-literal text plus the
// revision token observed at fetch time.
type Page struct {
	Title    string
	Text     string
	Revision int64
}

// PageWrite describes one pending write for batched application.
type PageWrite struct {
	Title   string
	Text    string
	Summary string

	// ExpectRevision is the revision the caller fetched. Zero means the
	// page is being created and must not exist yet.
	ExpectRevision int64

	// Unconditional skips the revision comparison (last writer wins).
	Unconditional bool
}

// Store is the document-store collaborator. All methods take a context:
// real backends sit behind network I/O.
type Store interface {
	// Fetch returns the page. A missing page is PageNotFoundError.
	Fetch(ctx context.Context, title string) (Page, error)

	// Write replaces the page content wholesale, comparing revisions.
	// expectRevision zero creates the page; RevisionMismatchError when
	// the stored revision differs. Returns the new page state.
	Write(ctx context.Context, title, text, summary string, expectRevision int64) (Page, error)

	// WriteUnconditional replaces the page regardless of its current
	// revision.
	WriteUnconditional(ctx context.Context, title, text, summary string) (Page, error)

	// Purge invalidates any cached rendering of the page. Issued after a
	// successful write; failures are surfaced but the write has already
	// committed.
	Purge(ctx context.Context, title string) error
}

// BatchWriter is an optional interface for backends that can apply
// several page writes atomically. The editor uses it for cascade deletes
// so a half-applied cascade cannot be persisted.
type BatchWriter interface {
	WriteAll(ctx context.Context, writes []PageWrite) ([]Page, error)
}

// PageNotFoundError reports a fetch of a page that does not exist.
type PageNotFoundError struct {
	Title string
}

// Error implements the error interface.
func (e *PageNotFoundError) Error() string {
	return fmt.Sprintf("page %q not found", e.Title)
}

// IsPageNotFound returns true if the error is a PageNotFoundError.
// Uses errors.As to handle wrapped errors.
func IsPageNotFound(err error) bool {
	var pe *PageNotFoundError
	return errors.As(err, &pe)
}

// RevisionMismatchError reports a conditional write that lost a race:
// the stored revision no longer matches the one the caller fetched.
// The caller's edit is intact; re-fetch and retry the whole
// fetch-mutate-write cycle.
type RevisionMismatchError struct {
	Title    string
	Expected int64
	Actual   int64
}

// Error implements the error interface.
func (e *RevisionMismatchError) Error() string {
	return fmt.Sprintf("page %q moved: expected revision %d, found %d", e.Title, e.Expected, e.Actual)
}

// IsRevisionMismatch returns true if the error is a
// RevisionMismatchError.
func IsRevisionMismatch(err error) bool {
	var re *RevisionMismatchError
	return errors.As(err, &re)
}

// TransportError wraps a backend failure with the attempted operation so
// the caller can retry the whole cycle. The core never retries.
type TransportError struct {
	Op    string // "fetch", "write", "purge"
	Title string
	Err   error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Title, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport returns true if the error is a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
