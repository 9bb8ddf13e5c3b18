package merge

import (
	"github.com/regtab/regtab/internal/record"
	"github.com/regtab/regtab/internal/schema"
)

// Op selects the merge operation.
type Op string

const (
	// OpInsert appends a new record.
	OpInsert Op = "insert"

	// OpUpdate replaces the record matching the incoming unique_id.
	OpUpdate Op = "update"

	// OpDelete removes the record matching the incoming unique_id.
	OpDelete Op = "delete"
)

// Engine reconciles one incoming record against a collection. Zero-value
// construction is not supported; use New.
type Engine struct {
	clock Clock
	ids   IDGenerator
}

// New creates an engine. Nil clock or generator fall back to the system
// clock and random UUIDs.
func New(clock Clock, ids IDGenerator) *Engine {
	if clock == nil {
		clock = SystemClock{}
	}
	if ids == nil {
		ids = UUIDGenerator{}
	}
	return &Engine{clock: clock, ids: ids}
}

// Options tune a single Apply call.
type Options struct {
	// StampOverride, when non-empty, is written into dos_stamp instead of
	// the clock's current time. Used for imported reports that carry
	// their original submission date.
	StampOverride string
}

// Apply produces the new collection resulting from one operation. The
// input collection is never mutated; records the operation does not touch
// are shared, not copied.
//
// On Insert the returned record (last element) carries the assigned
// unique_id, so callers can report it.
func (e *Engine) Apply(existing record.Collection, incoming *record.Record, op Op, s *schema.Schema, opts Options) (record.Collection, error) {
	switch op {
	case OpInsert:
		return e.insert(existing, incoming, s, opts)
	case OpUpdate:
		return e.update(existing, incoming, s, opts)
	case OpDelete:
		return e.delete(existing, incoming.UniqueID(), s)
	default:
		return nil, &UnknownOpError{Op: op}
	}
}

func (e *Engine) insert(existing record.Collection, incoming *record.Record, s *schema.Schema, opts Options) (record.Collection, error) {
	rec := incoming.Clone()
	id := rec.UniqueID()
	if id == "" {
		// Dependent records must name their parent; a generated id would
		// orphan the record.
		if s.SharedID {
			return nil, &MissingParentIDError{Collection: s.Name}
		}
		id = e.ids.NewID()
		rec.Set(record.FieldUniqueID, record.Scalar(id))
	}
	// sharedID collections key on the parent's id, which legitimately
	// repeats; uniqueness is a parent-collection invariant.
	if !s.SharedID && existing.FindByID(id) >= 0 {
		return nil, &DuplicateIDError{Collection: s.Name, ID: id}
	}
	e.stamp(rec, opts)

	out := make(record.Collection, 0, len(existing)+1)
	out = append(out, existing...)
	out = append(out, rec)
	return out, nil
}

func (e *Engine) update(existing record.Collection, incoming *record.Record, s *schema.Schema, opts Options) (record.Collection, error) {
	id := incoming.UniqueID()
	idx := existing.FindByID(id)
	if idx < 0 {
		return nil, &RecordNotFoundError{Collection: s.Name, ID: id}
	}

	// The incoming record describes the desired field set: present,
	// non-empty values win; everything else is dropped. Record.Set
	// already discards empty values, so a clone of the incoming record
	// is the merged result (field removal, not null-write).
	rec := incoming.Clone()
	rec.Set(record.FieldUniqueID, record.Scalar(id))
	e.stamp(rec, opts)

	out := make(record.Collection, len(existing))
	copy(out, existing)
	out[idx] = rec
	return out, nil
}

func (e *Engine) delete(existing record.Collection, id string, s *schema.Schema) (record.Collection, error) {
	if id == "" || existing.FindByID(id) < 0 {
		return nil, &RecordNotFoundError{Collection: s.Name, ID: id}
	}

	out := make(record.Collection, 0, len(existing))
	removed := false
	for _, rec := range existing {
		if rec.UniqueID() == id {
			// sharedID collections may hold several records under the
			// parent id; all of them go.
			if !removed || s.SharedID {
				removed = true
				continue
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func (e *Engine) stamp(rec *record.Record, opts Options) {
	if opts.StampOverride != "" {
		rec.Set(record.FieldDOSStamp, record.Scalar(opts.StampOverride))
		return
	}
	rec.Set(record.FieldDOSStamp, record.Scalar(FormatStamp(e.clock.Now())))
}

// CascadeResult carries the outcome of a two-collection cascade delete.
type CascadeResult struct {
	Parent   record.Collection
	Children record.Collection

	// ChildrenRemoved counts the dependent records erased alongside the
	// parent.
	ChildrenRemoved int
}

// CascadeDelete removes the parent record with the given id and every
// dependent child record sharing that id, as one operation over both
// collections. Neither input is mutated.
//
// A missing parent is RecordNotFoundError; a parent with no dependent
// children is not an error (the cascade simply removes zero children).
func (e *Engine) CascadeDelete(parent record.Collection, parentSchema *schema.Schema, children record.Collection, id string) (*CascadeResult, error) {
	newParent, err := e.delete(parent, id, parentSchema)
	if err != nil {
		return nil, err
	}

	newChildren := make(record.Collection, 0, len(children))
	removed := 0
	for _, rec := range children {
		if rec.UniqueID() == id {
			removed++
			continue
		}
		newChildren = append(newChildren, rec)
	}

	return &CascadeResult{
		Parent:          newParent,
		Children:        newChildren,
		ChildrenRemoved: removed,
	}, nil
}

// OtherSentinel is the designated list entry replaceable by free text.
const OtherSentinel = "Other"

// ReplaceOther substitutes the Other sentinel in a list field with
// user-supplied text. Empty text leaves the sentinel in place. Records
// without the field, or with a scalar under that key, are returned
// unchanged. The input record is not mutated.
func ReplaceOther(rec *record.Record, field, text string) *record.Record {
	if text == "" {
		return rec
	}
	elems := rec.List(field)
	if elems == nil {
		return rec
	}
	out := rec.Clone()
	replaced := make(record.List, len(elems))
	for i, elem := range elems {
		if elem == OtherSentinel {
			replaced[i] = text
		} else {
			replaced[i] = elem
		}
	}
	out.Set(field, replaced)
	return out
}
