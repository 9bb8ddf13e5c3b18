package tablit

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regtab/regtab/internal/record"
)

var testFieldOrder = []string{
	"unique_id", "group_name", "org_type", "region",
	"dm_structure", "recognition_status", "dos_stamp",
}

func orgFixture() record.Collection {
	one := record.New()
	one.Set("unique_id", record.Scalar("abc123"))
	one.Set("group_name", record.Scalar("Example Group"))
	one.Set("org_type", record.Scalar("User Group"))
	one.Set("region", record.Scalar("Europe"))
	one.Set("dm_structure", record.List{"Board", "Democratic Process"})
	one.Set("recognition_status", record.Scalar("recognised"))
	one.Set("dos_stamp", record.Scalar("2026-01-15T10:00:00Z"))

	two := record.New()
	two.Set("unique_id", record.Scalar("def456"))
	two.Set("group_name", record.Scalar(`O'Brien\Team`))
	two.Set("org_type", record.Scalar("Chapter"))
	two.Set("dos_stamp", record.Scalar("2026-01-16T11:30:00Z"))

	return record.Collection{one, two}
}

func TestSerializeGolden(t *testing.T) {
	out := Serialize(orgFixture(), testFieldOrder)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "org_collection", []byte(out))
}

func TestRoundTrip(t *testing.T) {
	// parse(serialize(parse(text))) == parse(text), content-wise.
	text := `return {
    {
        group_name = 'Zed\'s Group',
        unique_id = 'z1',
        dm_structure = {'Other'},
    },
    { unique_id = 'z2', group_name = 'Plain' },
}`
	first, err := Parse(text)
	require.NoError(t, err)

	serialized := Serialize(first, testFieldOrder)
	second, err := Parse(serialized)
	require.NoError(t, err)

	assert.True(t, record.EqualCollections(first, second))

	// Serializing again is byte-stable: canonical form is a fixed point.
	assert.Equal(t, serialized, Serialize(second, testFieldOrder))
}

func TestSerializeEmitsSchemaOrder(t *testing.T) {
	rec := record.New()
	rec.Set("dos_stamp", record.Scalar("2026-01-01T00:00:00Z"))
	rec.Set("group_name", record.Scalar("G"))
	rec.Set("unique_id", record.Scalar("u1"))

	out := Serialize(record.Collection{rec}, testFieldOrder)

	uid := strings.Index(out, "unique_id")
	name := strings.Index(out, "group_name")
	stamp := strings.Index(out, "dos_stamp")
	require.True(t, uid >= 0 && name >= 0 && stamp >= 0)
	assert.Less(t, uid, name)
	assert.Less(t, name, stamp)
}

func TestSerializeOmitsAbsentFields(t *testing.T) {
	rec := record.New()
	rec.Set("unique_id", record.Scalar("u1"))
	rec.Set("region", record.Scalar("Europe"))

	out := Serialize(record.Collection{rec}, testFieldOrder)

	assert.NotContains(t, out, "group_name")
	assert.NotContains(t, out, "= ''")
}

func TestSerializeUnknownFieldsAppended(t *testing.T) {
	rec := record.New()
	rec.Set("unique_id", record.Scalar("u1"))
	rec.Set("legacy_field", record.Scalar("kept"))

	out := Serialize(record.Collection{rec}, testFieldOrder)

	// Data the serializer was handed is never dropped.
	assert.Contains(t, out, "legacy_field = 'kept'")
	assert.Less(t, strings.Index(out, "unique_id"), strings.Index(out, "legacy_field"))
}

func TestEscapingFidelity(t *testing.T) {
	rec := record.New()
	rec.Set("unique_id", record.Scalar("u1"))
	rec.Set("group_name", record.Scalar(`O'Brien\Team`))

	out := Serialize(record.Collection{rec}, testFieldOrder)
	assert.Contains(t, out, `group_name = 'O\'Brien\\Team',`)

	back, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, `O'Brien\Team`, back[0].Scalar("group_name"))
}

func TestEscapeNewlineBecomesBreakToken(t *testing.T) {
	assert.Equal(t, "one<br/>two", Escape("one\ntwo"))
	assert.Equal(t, "one<br/>two", Escape("one\r\ntwo"))

	// The token survives a round trip as literal text.
	rec := record.New()
	rec.Set("unique_id", record.Scalar("u1"))
	rec.Set("group_name", record.Scalar("one\ntwo"))
	out := Serialize(record.Collection{rec}, testFieldOrder)
	back, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, "one<br/>two", back[0].Scalar("group_name"))
}

func TestEscapeNFCNormalizes(t *testing.T) {
	composed := "caf\u00e9"
	decomposed := "cafe\u0301"
	assert.Equal(t, Escape(composed), Escape(decomposed))
	assert.Equal(t, composed, Escape(decomposed))
}

func TestSerializeListEscapesElements(t *testing.T) {
	rec := record.New()
	rec.Set("unique_id", record.Scalar("u1"))
	rec.Set("dm_structure", record.List{"It's a board", `back\slash`})

	out := Serialize(record.Collection{rec}, testFieldOrder)
	assert.Contains(t, out, `dm_structure = {'It\'s a board', 'back\\slash'},`)
}
