package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	// Verify both kinds implement Value (compile-time check via assignment)
	var _ Value = Scalar("test")
	var _ Value = List{"a", "b"}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindScalar, KindOf(Scalar("x")))
	assert.Equal(t, KindList, KindOf(List{"x"}))
}

func TestValueEmpty(t *testing.T) {
	assert.True(t, Scalar("").Empty())
	assert.False(t, Scalar("x").Empty())
	assert.True(t, List{}.Empty())
	assert.True(t, List(nil).Empty())
	assert.False(t, List{"x"}.Empty())
}

func TestSetPreservesInsertionOrder(t *testing.T) {
	rec := New()
	rec.Set("b", Scalar("2"))
	rec.Set("a", Scalar("1"))
	rec.Set("c", List{"x"})

	assert.Equal(t, []string{"b", "a", "c"}, rec.Keys())

	// Overwriting keeps position
	rec.Set("a", Scalar("updated"))
	assert.Equal(t, []string{"b", "a", "c"}, rec.Keys())
	assert.Equal(t, "updated", rec.Scalar("a"))
}

func TestSetEmptyRemovesField(t *testing.T) {
	rec := New()
	rec.Set("name", Scalar("value"))
	require.Equal(t, 1, rec.Len())

	// Empty scalar removes, never stores ''
	rec.Set("name", Scalar(""))
	_, present := rec.Get("name")
	assert.False(t, present)
	assert.Equal(t, 0, rec.Len())

	// Empty list removes too
	rec.Set("items", List{"a"})
	rec.Set("items", List{})
	_, present = rec.Get("items")
	assert.False(t, present)

	// Nil value removes
	rec.Set("other", Scalar("v"))
	rec.Set("other", nil)
	_, present = rec.Get("other")
	assert.False(t, present)
}

func TestDeleteAbsentFieldIsNoop(t *testing.T) {
	rec := New()
	rec.Set("a", Scalar("1"))
	rec.Delete("missing")
	assert.Equal(t, 1, rec.Len())
}

func TestScalarAndListAccessors(t *testing.T) {
	rec := New()
	rec.Set("s", Scalar("v"))
	rec.Set("l", List{"a", "b"})

	assert.Equal(t, "v", rec.Scalar("s"))
	assert.Equal(t, []string{"a", "b"}, rec.List("l"))

	// Kind mismatch returns zero values
	assert.Equal(t, "", rec.Scalar("l"))
	assert.Nil(t, rec.List("s"))
	assert.Equal(t, "", rec.Scalar("absent"))
	assert.Nil(t, rec.List("absent"))
}

func TestCloneIsDeep(t *testing.T) {
	rec := New()
	rec.Set("unique_id", Scalar("abc"))
	rec.Set("items", List{"a", "b"})

	cp := rec.Clone()
	cp.Set("unique_id", Scalar("other"))
	cp.List("items")[0] = "mutated"

	assert.Equal(t, "abc", rec.Scalar("unique_id"))
	assert.Equal(t, []string{"a", "b"}, rec.List("items"))
}

func TestEqualRecordsIgnoresFieldOrder(t *testing.T) {
	a := New()
	a.Set("x", Scalar("1"))
	a.Set("y", List{"a"})

	b := New()
	b.Set("y", List{"a"})
	b.Set("x", Scalar("1"))

	assert.True(t, EqualRecords(a, b))

	b.Set("y", List{"a", "b"})
	assert.False(t, EqualRecords(a, b))
}

func TestCollectionFindByID(t *testing.T) {
	mk := func(id string) *Record {
		rec := New()
		rec.Set(FieldUniqueID, Scalar(id))
		return rec
	}
	coll := Collection{mk("a"), mk("b"), mk("c")}

	assert.Equal(t, 1, coll.FindByID("b"))
	assert.Equal(t, -1, coll.FindByID("zzz"))
	assert.Equal(t, -1, coll.FindByID(""))
}

func TestEqualCollections(t *testing.T) {
	mk := func(id string) *Record {
		rec := New()
		rec.Set(FieldUniqueID, Scalar(id))
		return rec
	}
	a := Collection{mk("1"), mk("2")}
	b := Collection{mk("1"), mk("2")}
	assert.True(t, EqualCollections(a, b))

	// Order matters
	c := Collection{mk("2"), mk("1")}
	assert.False(t, EqualCollections(a, c))
}
