package schema

import (
	_ "embed"
	"fmt"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/regtab/regtab/internal/record"
)

//go:embed schema.cue
var schemaCUE string

// Registry keys for the fixed collection set. These match the struct
// labels in schema.cue.
const (
	KeyOrgInfos          = "org_infos"
	KeyActivitiesReports = "activities_reports"
	KeyFinancialReports  = "financial_reports"
	KeyGrantReports      = "grant_reports"
	KeyIndicators        = "affiliate_indicators"
	KeyIndicatorPrograms = "affiliate_indicators_programs"
)

// Field is one schema field: a name and the value kind it must hold.
type Field struct {
	Name string      `json:"name"`
	Kind record.Kind `json:"kind"`
}

// Schema describes one collection: its display name, the page it is
// stored on, its ordered field list, and its relation to a dependent
// collection.
type Schema struct {
	// Key is the registry key (CUE struct label), e.g. "org_infos".
	Key string

	// Name is the collection's display name, e.g.
	// "Organizational Informations".
	Name string

	// Page is the page identifier the collection is stored under.
	Page string

	// Fields is the declared field order the serializer must follow.
	Fields []Field

	// Child is the registry key of the dependent collection correlated by
	// unique_id, or "" when the collection has none.
	Child string

	// SharedID marks a dependent collection whose records carry the
	// parent's unique_id. Ids are not unique within such a collection, so
	// the merge engine's uniqueness invariant does not apply to it.
	SharedID bool
}

// FieldOrder returns the declared field names in order.
func (s *Schema) FieldOrder() []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Name
	}
	return out
}

// KindOf returns the declared kind of a field and whether the field is
// part of the schema.
func (s *Schema) KindOf(name string) (record.Kind, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Kind, true
		}
	}
	return "", false
}

// Registry holds every loaded collection schema.
type Registry struct {
	byKey map[string]*Schema
	keys  []string
}

// cueCollection mirrors the CUE #Collection shape for decoding.
type cueCollection struct {
	Name     string  `json:"name"`
	Page     string  `json:"page"`
	Fields   []Field `json:"fields"`
	Child    string  `json:"child,omitempty"`
	SharedID bool    `json:"sharedID,omitempty"`
}

// Load compiles the embedded CUE definitions into a Registry.
//
// Load fails on definitions the rest of the system could not honor:
// duplicate field names, unknown kinds, missing unique_id or dos_stamp
// fields, or a child reference to a collection that does not exist.
func Load() (*Registry, error) {
	ctx := cuecontext.New()
	root := ctx.CompileString(schemaCUE)
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("compiling schema definitions: %w", err)
	}

	collVal := root.LookupPath(cue.ParsePath("collections"))
	if !collVal.Exists() {
		return nil, fmt.Errorf("schema definitions missing 'collections'")
	}

	iter, err := collVal.Fields()
	if err != nil {
		return nil, fmt.Errorf("iterating collections: %w", err)
	}

	reg := &Registry{byKey: make(map[string]*Schema)}
	for iter.Next() {
		key := iter.Label()
		var raw cueCollection
		if err := iter.Value().Decode(&raw); err != nil {
			return nil, fmt.Errorf("decoding collection %q: %w", key, err)
		}
		s := &Schema{
			Key:      key,
			Name:     raw.Name,
			Page:     raw.Page,
			Fields:   raw.Fields,
			Child:    raw.Child,
			SharedID: raw.SharedID,
		}
		if err := checkSchema(s); err != nil {
			return nil, fmt.Errorf("collection %q: %w", key, err)
		}
		reg.byKey[key] = s
		reg.keys = append(reg.keys, key)
	}
	sort.Strings(reg.keys)

	for _, key := range reg.keys {
		s := reg.byKey[key]
		if s.Child == "" {
			continue
		}
		child, ok := reg.byKey[s.Child]
		if !ok {
			return nil, fmt.Errorf("collection %q: child %q not defined", key, s.Child)
		}
		if !child.SharedID {
			return nil, fmt.Errorf("collection %q: child %q must be a sharedID collection", key, s.Child)
		}
	}
	return reg, nil
}

func checkSchema(s *Schema) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Page == "" {
		return fmt.Errorf("page is required")
	}
	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if seen[f.Name] {
			return fmt.Errorf("duplicate field %q", f.Name)
		}
		seen[f.Name] = true
		if f.Kind != record.KindScalar && f.Kind != record.KindList {
			return fmt.Errorf("field %q: unknown kind %q", f.Name, f.Kind)
		}
	}
	if !seen[record.FieldUniqueID] {
		return fmt.Errorf("missing %s field", record.FieldUniqueID)
	}
	if !seen[record.FieldDOSStamp] {
		return fmt.Errorf("missing %s field", record.FieldDOSStamp)
	}
	return nil
}

// Keys returns the registry keys in sorted order.
func (r *Registry) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Get returns the schema for a registry key.
func (r *Registry) Get(key string) (*Schema, bool) {
	s, ok := r.byKey[key]
	return s, ok
}

// ByName returns the schema whose display name matches.
func (r *Registry) ByName(name string) (*Schema, bool) {
	for _, s := range r.byKey {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// ByPage returns the schema stored under the given page identifier.
func (r *Registry) ByPage(page string) (*Schema, bool) {
	for _, s := range r.byKey {
		if s.Page == page {
			return s, true
		}
	}
	return nil, false
}

// ValidationIssue describes one problem found by Validate.
type ValidationIssue struct {
	// Index is the record's position in the collection.
	Index int

	// Field is the offending field, or "" for record-level issues.
	Field string

	// Message describes the problem.
	Message string
}

func (v ValidationIssue) String() string {
	if v.Field != "" {
		return fmt.Sprintf("record %d, field %s: %s", v.Index, v.Field, v.Message)
	}
	return fmt.Sprintf("record %d: %s", v.Index, v.Message)
}

// Validate checks a parsed collection against the schema: unknown fields,
// kind mismatches, missing ids, and duplicate unique_id values (unless the
// schema is a sharedID collection). It reports every issue rather than
// stopping at the first so a page can be repaired in one pass.
func (s *Schema) Validate(coll record.Collection) []ValidationIssue {
	var issues []ValidationIssue
	seenIDs := make(map[string]int)

	for i, rec := range coll {
		id := rec.UniqueID()
		if id == "" {
			issues = append(issues, ValidationIssue{Index: i, Field: record.FieldUniqueID, Message: "missing"})
		} else if !s.SharedID {
			if prev, dup := seenIDs[id]; dup {
				issues = append(issues, ValidationIssue{
					Index: i, Field: record.FieldUniqueID,
					Message: fmt.Sprintf("duplicate of record %d (%s)", prev, id),
				})
			} else {
				seenIDs[id] = i
			}
		}

		for _, key := range rec.Keys() {
			v, _ := rec.Get(key)
			kind, known := s.KindOf(key)
			if !known {
				issues = append(issues, ValidationIssue{Index: i, Field: key, Message: "not in schema"})
				continue
			}
			if record.KindOf(v) != kind {
				issues = append(issues, ValidationIssue{
					Index: i, Field: key,
					Message: fmt.Sprintf("kind %s, schema declares %s", record.KindOf(v), kind),
				})
			}
		}
	}
	return issues
}
