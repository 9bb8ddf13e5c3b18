package tablit

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/regtab/regtab/internal/record"
)

// lineBreakToken is the markup token that replaces raw newlines in scalar
// values at the serialization boundary. Parsed back, it stays literal
// text, so serialized pages never contain raw line breaks inside quotes.
const lineBreakToken = "<br/>"

// Serialize renders a collection back into its canonical table-literal
// form.
//
// fieldOrder is the collection schema's declared field order. Fields are
// emitted strictly in that order, omitting any field absent from the
// record. Fields present on a record but unknown to the schema are
// appended after the schema fields in record order rather than silently
// dropped: the serializer must never lose data it was handed.
//
// The output is canonical: Serialize(Parse(text)) normalizes field order
// and escaping but preserves content exactly.
func Serialize(coll record.Collection, fieldOrder []string) string {
	var b strings.Builder
	b.WriteString("return {\n")
	for _, rec := range coll {
		writeRecord(&b, rec, fieldOrder)
	}
	b.WriteString("}")
	return b.String()
}

func writeRecord(b *strings.Builder, rec *record.Record, fieldOrder []string) {
	b.WriteString("    {\n")

	inSchema := make(map[string]bool, len(fieldOrder))
	for _, key := range fieldOrder {
		inSchema[key] = true
		if v, ok := rec.Get(key); ok {
			writeField(b, key, v)
		}
	}
	for _, key := range rec.Keys() {
		if !inSchema[key] {
			v, _ := rec.Get(key)
			writeField(b, key, v)
		}
	}

	b.WriteString("    },\n")
}

func writeField(b *strings.Builder, key string, v record.Value) {
	b.WriteString("        ")
	b.WriteString(key)
	b.WriteString(" = ")
	switch val := v.(type) {
	case record.Scalar:
		writeQuoted(b, string(val))
	case record.List:
		b.WriteByte('{')
		for i, elem := range val {
			if i > 0 {
				b.WriteString(", ")
			}
			writeQuoted(b, elem)
		}
		b.WriteByte('}')
	}
	b.WriteString(",\n")
}

// writeQuoted emits one escaped, single-quoted scalar.
// Escaping order matters: backslashes are doubled first so the escapes
// introduced for quotes are not re-escaped.
func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('\'')
	b.WriteString(Escape(s))
	b.WriteByte('\'')
}

// Escape applies the canonical escaping rules to one scalar value:
// NFC normalization, backslash doubling, newline to <br/>, quote
// escaping. Exported for tests and for callers that render previews.
func Escape(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\n", lineBreakToken)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return s
}
