package editor

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regtab/regtab/internal/merge"
	"github.com/regtab/regtab/internal/record"
	"github.com/regtab/regtab/internal/schema"
	"github.com/regtab/regtab/internal/store"
	"github.com/regtab/regtab/internal/tablit"
	"github.com/regtab/regtab/internal/testutil"
)

var testTime = time.Date(2026, 3, 15, 12, 30, 0, 0, time.UTC)

func newTestEditor(t *testing.T) (*Editor, *store.Memory) {
	t.Helper()
	reg, err := schema.Load()
	require.NoError(t, err)

	mem := store.NewMemory()
	engine := merge.New(
		testutil.NewDeterministicClock(testTime),
		testutil.NewSequentialIDGenerator("test"),
	)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(mem, reg, engine, log), mem
}

func orgInput(id, name string) *record.Record {
	rec := record.New()
	if id != "" {
		rec.Set(record.FieldUniqueID, record.Scalar(id))
	}
	rec.Set(record.FieldGroupName, record.Scalar(name))
	return rec
}

func TestLoadMissingPageIsEmptyCollection(t *testing.T) {
	e, _ := newTestEditor(t)

	loaded, err := e.Load(context.Background(), schema.KeyOrgInfos)
	require.NoError(t, err)
	assert.Empty(t, loaded.Collection)
	assert.Equal(t, int64(0), loaded.Page.Revision)
	assert.Equal(t, "Module:Organizational Informations", loaded.Page.Title)
}

func TestLoadUnknownCollection(t *testing.T) {
	e, _ := newTestEditor(t)
	_, err := e.Load(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown collection "nope"`)
}

func TestLoadMalformedPageAborts(t *testing.T) {
	e, mem := newTestEditor(t)
	mem.Seed("Module:Organizational Informations", "return { { broken")

	_, err := e.Load(context.Background(), schema.KeyOrgInfos)
	require.Error(t, err)
	assert.True(t, tablit.IsMalformed(err))

	// The broken page cannot be written over either.
	_, err = e.Apply(context.Background(), schema.KeyOrgInfos, orgInput("", "X"), merge.OpInsert, merge.Options{})
	require.Error(t, err)
	got, _ := mem.Fetch(context.Background(), "Module:Organizational Informations")
	assert.Equal(t, "return { { broken", got.Text)
}

func TestApplyInsertCreatesPage(t *testing.T) {
	e, mem := newTestEditor(t)
	ctx := context.Background()

	res, err := e.Apply(ctx, schema.KeyOrgInfos, orgInput("", "Wikimedia Alpha"), merge.OpInsert, merge.Options{})
	require.NoError(t, err)

	assert.Equal(t, "test-1", res.UniqueID)
	assert.Equal(t, int64(1), res.Page.Revision)

	page, err := mem.Fetch(ctx, "Module:Organizational Informations")
	require.NoError(t, err)
	assert.Contains(t, page.Text, "unique_id = 'test-1',")
	assert.Contains(t, page.Text, "group_name = 'Wikimedia Alpha',")
	assert.Contains(t, page.Text, "dos_stamp = '2026-03-15T12:30:00Z',")

	// The stored text parses back to the returned collection.
	parsed, err := tablit.Parse(page.Text)
	require.NoError(t, err)
	assert.True(t, record.EqualCollections(res.Collection, parsed))

	assert.Equal(t, 1, mem.PurgeCount("Module:Organizational Informations"))
}

func TestApplyUpdateThenDelete(t *testing.T) {
	e, mem := newTestEditor(t)
	ctx := context.Background()

	res, err := e.Apply(ctx, schema.KeyOrgInfos, orgInput("", "Alpha"), merge.OpInsert, merge.Options{})
	require.NoError(t, err)
	id := res.UniqueID

	res, err = e.Apply(ctx, schema.KeyOrgInfos, orgInput(id, "Alpha Renamed"), merge.OpUpdate, merge.Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Page.Revision)
	assert.Equal(t, "Alpha Renamed", res.Collection[0].GroupName())

	res, err = e.Apply(ctx, schema.KeyOrgInfos, orgInput(id, ""), merge.OpDelete, merge.Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Collection)

	page, err := mem.Fetch(ctx, "Module:Organizational Informations")
	require.NoError(t, err)
	assert.Equal(t, "return {\n}", page.Text)
}

func TestApplyMergeErrorWritesNothing(t *testing.T) {
	e, mem := newTestEditor(t)
	ctx := context.Background()

	_, err := e.Apply(ctx, schema.KeyOrgInfos, orgInput("ghost", "X"), merge.OpUpdate, merge.Options{})
	require.Error(t, err)
	assert.True(t, merge.IsNotFound(err))

	_, err = mem.Fetch(ctx, "Module:Organizational Informations")
	assert.True(t, store.IsPageNotFound(err))
	assert.Equal(t, 0, mem.PurgeCount("Module:Organizational Informations"))
}

func TestApplyConcurrentEditDetected(t *testing.T) {
	e, mem := newTestEditor(t)
	ctx := context.Background()

	_, err := e.Apply(ctx, schema.KeyOrgInfos, orgInput("", "Alpha"), merge.OpInsert, merge.Options{})
	require.NoError(t, err)

	// Someone else rewrites the page between this editor's fetch and
	// write. The memory store serializes Apply calls, so simulate by
	// seeding a newer revision under the editor's feet via a stale
	// expectation: Seed bumps the revision.
	mem.Seed("Module:Organizational Informations", "return {\n}")

	// A second Apply re-fetches and succeeds against the new revision.
	res, err := e.Apply(ctx, schema.KeyOrgInfos, orgInput("", "Beta"), merge.OpInsert, merge.Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Page.Revision)
}

func TestApplyUnconditionalSkipsRevisionCheck(t *testing.T) {
	e, mem := newTestEditor(t)
	e.Unconditional = true
	ctx := context.Background()

	mem.Seed("Module:Organizational Informations", "return {\n}")
	mem.Seed("Module:Organizational Informations", "return {\n}")

	res, err := e.Apply(ctx, schema.KeyOrgInfos, orgInput("", "Alpha"), merge.OpInsert, merge.Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Page.Revision)
}

func TestApplyCascadeDelete(t *testing.T) {
	e, mem := newTestEditor(t)
	ctx := context.Background()

	// Parent indicator row plus two dependent program rows under its id.
	res, err := e.Apply(ctx, schema.KeyIndicators, orgInput("", "Alpha"), merge.OpInsert, merge.Options{})
	require.NoError(t, err)
	parentID := res.UniqueID

	program := func(name string) *record.Record {
		rec := record.New()
		rec.Set(record.FieldUniqueID, record.Scalar(parentID))
		rec.Set("program_name", record.Scalar(name))
		return rec
	}
	_, err = e.Apply(ctx, schema.KeyIndicatorPrograms, program("Editathon"), merge.OpInsert, merge.Options{})
	require.NoError(t, err)
	_, err = e.Apply(ctx, schema.KeyIndicatorPrograms, program("Workshop"), merge.OpInsert, merge.Options{})
	require.NoError(t, err)

	res, err = e.Apply(ctx, schema.KeyIndicators, orgInput(parentID, ""), merge.OpDelete, merge.Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.ChildrenRemoved)
	assert.Empty(t, res.Collection)

	parentPage, err := mem.Fetch(ctx, "Module:Affiliate Indicators")
	require.NoError(t, err)
	assert.Equal(t, "return {\n}", parentPage.Text)

	childPage, err := mem.Fetch(ctx, "Module:Affiliate Indicators/Programs")
	require.NoError(t, err)
	assert.Equal(t, "return {\n}", childPage.Text)

	// One purge per insert, plus one more each from the cascade.
	assert.Equal(t, 2, mem.PurgeCount("Module:Affiliate Indicators"))
	assert.Equal(t, 3, mem.PurgeCount("Module:Affiliate Indicators/Programs"))
}

func TestApplyCascadeMissingParent(t *testing.T) {
	e, _ := newTestEditor(t)
	_, err := e.Apply(context.Background(), schema.KeyIndicators, orgInput("ghost", ""), merge.OpDelete, merge.Options{})
	require.Error(t, err)
	assert.True(t, merge.IsNotFound(err))
}

func TestCanonicalize(t *testing.T) {
	e, mem := newTestEditor(t)
	ctx := context.Background()

	// Hand-edited page: fields out of schema order, no trailing commas.
	mem.Seed("Module:Organizational Informations",
		"return { { group_name = 'Alpha', unique_id = 'a1' } }")

	res, err := e.Canonicalize(ctx, schema.KeyOrgInfos)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Page.Revision)

	page, err := mem.Fetch(ctx, "Module:Organizational Informations")
	require.NoError(t, err)
	assert.Equal(t, "return {\n    {\n        unique_id = 'a1',\n        group_name = 'Alpha',\n    },\n}", page.Text)

	// Already canonical: no write, same revision.
	res, err = e.Canonicalize(ctx, schema.KeyOrgInfos)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Page.Revision)
}
