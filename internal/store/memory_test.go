package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFetchMissing(t *testing.T) {
	m := NewMemory()
	_, err := m.Fetch(context.Background(), "Module:Nope")
	require.Error(t, err)
	assert.True(t, IsPageNotFound(err))
}

func TestMemoryWriteCreateAndUpdate(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	// Revision zero creates.
	p, err := m.Write(ctx, "Module:X", "v1", "create", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.Revision)

	// Conditional update against the fetched revision.
	p, err = m.Write(ctx, "Module:X", "v2", "update", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.Revision)

	got, err := m.Fetch(ctx, "Module:X")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Text)
}

func TestMemoryWriteRevisionMismatch(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	m.Seed("Module:X", "v1")

	// Stale expectation loses.
	_, err := m.Write(ctx, "Module:X", "v2", "update", 0)
	require.Error(t, err)
	assert.True(t, IsRevisionMismatch(err))

	var re *RevisionMismatchError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, int64(0), re.Expected)
	assert.Equal(t, int64(1), re.Actual)

	// The losing write changed nothing.
	got, err := m.Fetch(ctx, "Module:X")
	require.NoError(t, err)
	assert.Equal(t, "v1", got.Text)
}

func TestMemoryWriteUnconditional(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	m.Seed("Module:X", "v1")

	p, err := m.WriteUnconditional(ctx, "Module:X", "forced", "force")
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.Revision)
	assert.Equal(t, "forced", p.Text)
}

func TestMemoryWriteAllAtomic(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	m.Seed("Module:A", "a1")
	m.Seed("Module:B", "b1")

	// One stale expectation fails the whole batch.
	_, err := m.WriteAll(ctx, []PageWrite{
		{Title: "Module:A", Text: "a2", ExpectRevision: 1},
		{Title: "Module:B", Text: "b2", ExpectRevision: 99},
	})
	require.Error(t, err)
	assert.True(t, IsRevisionMismatch(err))

	got, _ := m.Fetch(ctx, "Module:A")
	assert.Equal(t, "a1", got.Text)

	// A consistent batch applies everywhere.
	pages, err := m.WriteAll(ctx, []PageWrite{
		{Title: "Module:A", Text: "a2", ExpectRevision: 1},
		{Title: "Module:B", Text: "b2", ExpectRevision: 1},
	})
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, int64(2), pages[0].Revision)
	assert.Equal(t, int64(2), pages[1].Revision)
}

func TestMemoryPurgeCounted(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Purge(ctx, "Module:X"))
	require.NoError(t, m.Purge(ctx, "Module:X"))
	assert.Equal(t, 2, m.PurgeCount("Module:X"))
	assert.Equal(t, 0, m.PurgeCount("Module:Y"))
}
