package tablit

import (
	"errors"
	"fmt"
)

// MalformedTableError reports input that violates the table-literal
// grammar. The write path must abort without touching the page store when
// it sees one: a page that cannot be parsed cannot be safely rewritten.
type MalformedTableError struct {
	// Line and Col locate the offending byte, 1-based.
	Line int
	Col  int

	// Message describes the violation.
	Message string
}

// Error implements the error interface.
func (e *MalformedTableError) Error() string {
	return fmt.Sprintf("malformed table at %d:%d: %s", e.Line, e.Col, e.Message)
}

// IsMalformed returns true if the error is a MalformedTableError.
// Uses errors.As to handle wrapped errors.
func IsMalformed(err error) bool {
	var me *MalformedTableError
	return errors.As(err, &me)
}
