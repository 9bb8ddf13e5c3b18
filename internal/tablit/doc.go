// Package tablit parses and serializes the structured-text table literal
// used as the durable wire format for record collections.
//
// The grammar is deliberately restricted: a single top-level
//
//	return {
//	    {
//	        key = 'value',
//	        other = {'a', 'b'},
//	    },
//	}
//
// sequence, where every value is either a single-quoted string or a
// brace-delimited sequence of single-quoted strings. Nothing else from the
// host syntax is accepted: no expressions, no numeric literals, no
// comments, no double quotes. Accepting a superset would let malformed
// pages round-trip through the write path undetected.
//
// Parsing and serialization are pure: no I/O, no clock, no globals.
//
// CANONICAL FORM:
//
// Serialize emits one canonical rendering - schema field order, four-space
// indentation, trailing commas, NFC-normalized scalars, and a fixed
// escaping table (backslash doubled, newline replaced by the <br/> markup
// token, single quote backslash-escaped). Parse(Serialize(Parse(text)))
// is content-equal to Parse(text) for every well-formed text.
package tablit
