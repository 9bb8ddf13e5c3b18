package editor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/regtab/regtab/internal/merge"
	"github.com/regtab/regtab/internal/record"
	"github.com/regtab/regtab/internal/schema"
	"github.com/regtab/regtab/internal/store"
	"github.com/regtab/regtab/internal/tablit"
)

// Editor owns the fetch-merge-serialize-write pipeline for one store.
type Editor struct {
	store  store.Store
	reg    *schema.Registry
	engine *merge.Engine
	log    *slog.Logger

	// Unconditional disables revision comparison on writes, reproducing
	// the source system's last-writer-wins behavior.
	Unconditional bool
}

// New creates an editor. A nil logger discards nothing: slog.Default()
// is used.
func New(st store.Store, reg *schema.Registry, engine *merge.Engine, log *slog.Logger) *Editor {
	if log == nil {
		log = slog.Default()
	}
	return &Editor{store: st, reg: reg, engine: engine, log: log}
}

// Loaded is a fetched and parsed collection together with the page state
// it came from.
type Loaded struct {
	Schema     *schema.Schema
	Collection record.Collection
	Page       store.Page
}

// Load fetches and parses the collection stored under the given registry
// key. A missing page loads as an empty collection at revision zero, so
// the first insert creates the page.
func (e *Editor) Load(ctx context.Context, key string) (*Loaded, error) {
	s, ok := e.reg.Get(key)
	if !ok {
		return nil, fmt.Errorf("unknown collection %q", key)
	}

	page, err := e.store.Fetch(ctx, s.Page)
	if err != nil {
		if store.IsPageNotFound(err) {
			return &Loaded{Schema: s, Page: store.Page{Title: s.Page}}, nil
		}
		return nil, &store.TransportError{Op: "fetch", Title: s.Page, Err: err}
	}

	coll, err := tablit.Parse(page.Text)
	if err != nil {
		// A page that cannot be parsed cannot be safely rewritten; the
		// write path must stop here, before the store is touched again.
		return nil, fmt.Errorf("collection %q: %w", s.Name, err)
	}
	return &Loaded{Schema: s, Collection: coll, Page: page}, nil
}

// ApplyResult reports a committed write.
type ApplyResult struct {
	Collection record.Collection
	Page       store.Page

	// UniqueID is the id of the affected record (assigned on insert).
	UniqueID string

	// ChildrenRemoved counts cascade-deleted dependent records.
	ChildrenRemoved int
}

// Apply runs one merge operation end to end. Delete on a collection with
// a dependent child collection cascades: both pages are rewritten, in one
// batch when the backend supports it.
func (e *Editor) Apply(ctx context.Context, key string, incoming *record.Record, op merge.Op, opts merge.Options) (*ApplyResult, error) {
	loaded, err := e.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	s := loaded.Schema

	if op == merge.OpDelete && s.Child != "" {
		return e.applyCascade(ctx, loaded, incoming.UniqueID())
	}

	merged, err := e.engine.Apply(loaded.Collection, incoming, op, s, opts)
	if err != nil {
		return nil, err
	}

	affectedID := incoming.UniqueID()
	if op == merge.OpInsert {
		affectedID = merged[len(merged)-1].UniqueID()
	}

	text := tablit.Serialize(merged, s.FieldOrder())
	summary := fmt.Sprintf("%s record %s", op, affectedID)
	page, err := e.write(ctx, s.Page, text, summary, loaded.Page.Revision)
	if err != nil {
		return nil, err
	}
	e.purge(ctx, s.Page)

	e.log.Info("collection updated",
		"collection", s.Name, "op", string(op), "unique_id", affectedID,
		"records", len(merged), "revision", page.Revision)
	return &ApplyResult{Collection: merged, Page: page, UniqueID: affectedID}, nil
}

// applyCascade deletes the parent record and every dependent child record
// sharing its id, writing both pages together.
func (e *Editor) applyCascade(ctx context.Context, parent *Loaded, id string) (*ApplyResult, error) {
	child, err := e.Load(ctx, parent.Schema.Child)
	if err != nil {
		return nil, err
	}

	res, err := e.engine.CascadeDelete(parent.Collection, parent.Schema, child.Collection, id)
	if err != nil {
		return nil, err
	}

	summary := fmt.Sprintf("delete record %s (cascade)", id)
	writes := []store.PageWrite{
		// Child first on the fallback path: an interrupted cascade must
		// orphan children, never resurrect a deleted parent.
		{
			Title: child.Schema.Page, Text: tablit.Serialize(res.Children, child.Schema.FieldOrder()),
			Summary: summary, ExpectRevision: child.Page.Revision, Unconditional: e.Unconditional,
		},
		{
			Title: parent.Schema.Page, Text: tablit.Serialize(res.Parent, parent.Schema.FieldOrder()),
			Summary: summary, ExpectRevision: parent.Page.Revision, Unconditional: e.Unconditional,
		},
	}

	var pages []store.Page
	if bw, ok := e.store.(store.BatchWriter); ok {
		pages, err = bw.WriteAll(ctx, writes)
		if err != nil {
			return nil, err
		}
	} else {
		pages = make([]store.Page, len(writes))
		for i, w := range writes {
			p, err := e.write(ctx, w.Title, w.Text, w.Summary, w.ExpectRevision)
			if err != nil {
				return nil, err
			}
			pages[i] = p
		}
	}
	e.purge(ctx, child.Schema.Page)
	e.purge(ctx, parent.Schema.Page)

	e.log.Info("cascade delete",
		"collection", parent.Schema.Name, "unique_id", id,
		"children_removed", res.ChildrenRemoved)
	return &ApplyResult{
		Collection:      res.Parent,
		Page:            pages[len(pages)-1],
		UniqueID:        id,
		ChildrenRemoved: res.ChildrenRemoved,
	}, nil
}

// Canonicalize parses a collection page and rewrites it in canonical
// form: schema field order, normalized escaping. Content is unchanged by
// construction (the round-trip property).
func (e *Editor) Canonicalize(ctx context.Context, key string) (*ApplyResult, error) {
	loaded, err := e.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	s := loaded.Schema

	text := tablit.Serialize(loaded.Collection, s.FieldOrder())
	if text == loaded.Page.Text {
		return &ApplyResult{Collection: loaded.Collection, Page: loaded.Page}, nil
	}
	page, err := e.write(ctx, s.Page, text, "canonicalize", loaded.Page.Revision)
	if err != nil {
		return nil, err
	}
	e.purge(ctx, s.Page)
	return &ApplyResult{Collection: loaded.Collection, Page: page}, nil
}

func (e *Editor) write(ctx context.Context, title, text, summary string, expectRevision int64) (store.Page, error) {
	if e.Unconditional {
		return e.store.WriteUnconditional(ctx, title, text, summary)
	}
	return e.store.Write(ctx, title, text, summary, expectRevision)
}

// purge failures are logged, not surfaced: the write has already
// committed, and a stale cache corrects itself on the next render.
func (e *Editor) purge(ctx context.Context, title string) {
	if err := e.store.Purge(ctx, title); err != nil {
		e.log.Warn("purge failed", "page", title, "error", err)
	}
}
