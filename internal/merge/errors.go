package merge

import (
	"errors"
	"fmt"
)

// RecordNotFoundError reports an Update or Delete whose target unique_id
// is absent from the fetched collection. The usual cause is a stale read:
// a concurrent editor removed or replaced the record after this editor's
// fetch. Callers decide whether to re-fetch and retry or to surface
// "the item no longer exists".
type RecordNotFoundError struct {
	Collection string
	ID         string
}

// Error implements the error interface.
func (e *RecordNotFoundError) Error() string {
	return fmt.Sprintf("no record with unique_id %q in %q", e.ID, e.Collection)
}

// IsNotFound returns true if the error is a RecordNotFoundError.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	var re *RecordNotFoundError
	return errors.As(err, &re)
}

// DuplicateIDError reports an Insert whose unique_id is already present.
// Ids are assigned once and never reused, so a collision means the caller
// submitted a stale or hand-built record.
type DuplicateIDError struct {
	Collection string
	ID         string
}

// Error implements the error interface.
func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("unique_id %q already present in %q", e.ID, e.Collection)
}

// IsDuplicateID returns true if the error is a DuplicateIDError.
func IsDuplicateID(err error) bool {
	var de *DuplicateIDError
	return errors.As(err, &de)
}

// MissingParentIDError reports an insert into a dependent collection
// without a unique_id. Dependent records carry their parent's id; a
// generated one would correspond to no parent and the record could never
// be reached or cascade-deleted.
type MissingParentIDError struct {
	Collection string
}

// Error implements the error interface.
func (e *MissingParentIDError) Error() string {
	return fmt.Sprintf("insert into %q requires the parent's unique_id", e.Collection)
}

// IsMissingParentID returns true if the error is a MissingParentIDError.
func IsMissingParentID(err error) bool {
	var me *MissingParentIDError
	return errors.As(err, &me)
}

// UnknownOpError reports an Apply call whose operation is not one of
// insert, update, delete.
type UnknownOpError struct {
	Op Op
}

// Error implements the error interface.
func (e *UnknownOpError) Error() string {
	return fmt.Sprintf("unknown merge operation %q", string(e.Op))
}

// IsUnknownOp returns true if the error is an UnknownOpError.
func IsUnknownOp(err error) bool {
	var ue *UnknownOpError
	return errors.As(err, &ue)
}
