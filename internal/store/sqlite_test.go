package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "pages.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteFetchMissing(t *testing.T) {
	s := openTestDB(t)
	_, err := s.Fetch(context.Background(), "Module:Nope")
	require.Error(t, err)
	assert.True(t, IsPageNotFound(err))
}

func TestSQLiteWriteRoundTrip(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	p, err := s.Write(ctx, "Module:X", "v1", "create", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.Revision)

	p, err = s.Write(ctx, "Module:X", "v2", "update", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.Revision)

	got, err := s.Fetch(ctx, "Module:X")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Text)
	assert.Equal(t, int64(2), got.Revision)
}

func TestSQLiteRevisionMismatch(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	_, err := s.Write(ctx, "Module:X", "v1", "create", 0)
	require.NoError(t, err)

	_, err = s.Write(ctx, "Module:X", "v2", "stale", 0)
	require.Error(t, err)
	assert.True(t, IsRevisionMismatch(err))

	got, err := s.Fetch(ctx, "Module:X")
	require.NoError(t, err)
	assert.Equal(t, "v1", got.Text)
}

func TestSQLiteWriteUnconditional(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	_, err := s.Write(ctx, "Module:X", "v1", "create", 0)
	require.NoError(t, err)

	p, err := s.WriteUnconditional(ctx, "Module:X", "forced", "force")
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.Revision)
}

func TestSQLiteWriteAllAtomic(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	_, err := s.Write(ctx, "Module:A", "a1", "create", 0)
	require.NoError(t, err)
	_, err = s.Write(ctx, "Module:B", "b1", "create", 0)
	require.NoError(t, err)

	// The failing write rolls back the batch, including the write that
	// preceded it in the slice.
	_, err = s.WriteAll(ctx, []PageWrite{
		{Title: "Module:A", Text: "a2", ExpectRevision: 1},
		{Title: "Module:B", Text: "b2", ExpectRevision: 99},
	})
	require.Error(t, err)
	assert.True(t, IsRevisionMismatch(err))

	got, err := s.Fetch(ctx, "Module:A")
	require.NoError(t, err)
	assert.Equal(t, "a1", got.Text)

	pages, err := s.WriteAll(ctx, []PageWrite{
		{Title: "Module:A", Text: "a2", ExpectRevision: 1},
		{Title: "Module:B", Text: "b2", ExpectRevision: 1},
	})
	require.NoError(t, err)
	require.Len(t, pages, 2)
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pages.db")
	ctx := context.Background()

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	_, err = s.Write(ctx, "Module:X", "persisted", "create", 0)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// OpenSQLite is idempotent over an existing database.
	s2, err := OpenSQLite(path)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.Fetch(ctx, "Module:X")
	require.NoError(t, err)
	assert.Equal(t, "persisted", got.Text)
	assert.Equal(t, int64(1), got.Revision)
}

func TestSQLitePurgeIsNoop(t *testing.T) {
	s := openTestDB(t)
	assert.NoError(t, s.Purge(context.Background(), "Module:X"))
}
