package tablit

import (
	"fmt"
	"strings"

	"github.com/regtab/regtab/internal/record"
)

// Parse converts the raw table literal of one collection page into an
// ordered collection of records.
//
// Errors are always *MalformedTableError. The parser never performs I/O
// and is total given well-formed input.
func Parse(text string) (record.Collection, error) {
	p := &parser{src: text, line: 1, col: 1}
	coll, err := p.parseDocument()
	if err != nil {
		return nil, err
	}
	return coll, nil
}

// parser is a byte cursor over the source with line/column tracking.
// All reads go through advance() so positions stay accurate for error
// reporting.
type parser struct {
	src  string
	pos  int
	line int
	col  int
}

func (p *parser) errf(format string, args ...any) *MalformedTableError {
	return &MalformedTableError{Line: p.line, Col: p.col, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) advance() byte {
	c := p.src[p.pos]
	p.pos++
	if c == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
	return c
}

// skipSpace consumes whitespace. The grammar has no comments, so nothing
// else is skipped.
func (p *parser) skipSpace() {
	for !p.eof() {
		switch p.peek() {
		case ' ', '\t', '\r', '\n':
			p.advance()
		default:
			return
		}
	}
}

// expect consumes the given byte or fails.
func (p *parser) expect(c byte) error {
	p.skipSpace()
	if p.eof() {
		return p.errf("unexpected end of input, want %q", string(c))
	}
	if got := p.peek(); got != c {
		return p.errf("unexpected %q, want %q", string(got), string(c))
	}
	p.advance()
	return nil
}

// parseDocument recognizes `return { record, record, ... }` with optional
// trailing comma, and nothing after the closing brace.
func (p *parser) parseDocument() (record.Collection, error) {
	p.skipSpace()
	if !p.consumeWord("return") {
		return nil, p.errf("document must start with 'return'")
	}
	if err := p.expect('{'); err != nil {
		return nil, err
	}

	var coll record.Collection
	for {
		p.skipSpace()
		if p.eof() {
			return nil, p.errf("unexpected end of input, unbalanced braces")
		}
		if p.peek() == '}' {
			p.advance()
			break
		}
		rec, err := p.parseRecord()
		if err != nil {
			return nil, err
		}
		coll = append(coll, rec)

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.advance()
		case '}':
			// Closing brace handled at loop top.
		default:
			if p.eof() {
				return nil, p.errf("unexpected end of input, unbalanced braces")
			}
			return nil, p.errf("expected ',' or '}' after record")
		}
	}

	p.skipSpace()
	if !p.eof() {
		return nil, p.errf("trailing content after table literal")
	}
	return coll, nil
}

// consumeWord consumes an exact keyword followed by a non-identifier byte.
func (p *parser) consumeWord(word string) bool {
	if !strings.HasPrefix(p.src[p.pos:], word) {
		return false
	}
	end := p.pos + len(word)
	if end < len(p.src) && isIdentByte(p.src[end]) {
		return false
	}
	for range word {
		p.advance()
	}
	return true
}

// parseRecord recognizes `{ key = value, ... }`. Duplicate keys within one
// record are a grammar violation: the record model is a mapping, and a
// duplicate would silently shadow an earlier value.
func (p *parser) parseRecord() (*record.Record, error) {
	if err := p.expect('{'); err != nil {
		return nil, err
	}

	rec := record.New()
	// Seen keys are tracked separately from the record: empty values are
	// dropped from the record on Set, but a dropped value does not license
	// reusing its key.
	seen := make(map[string]bool)
	for {
		p.skipSpace()
		if p.eof() {
			return nil, p.errf("unexpected end of input inside record, unbalanced braces")
		}
		if p.peek() == '}' {
			p.advance()
			return rec, nil
		}

		key, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		if seen[key] {
			return nil, p.errf("duplicate key %q in record", key)
		}
		seen[key] = true
		if err := p.expect('='); err != nil {
			return nil, err
		}

		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		// Empty scalars and empty lists in stored text are tolerated on
		// read but dropped: the sparse-field model has no
		// present-but-empty state.
		rec.Set(key, val)

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.advance()
		case '}':
			// Closing brace handled at loop top.
		default:
			if p.eof() {
				return nil, p.errf("unexpected end of input inside record, unbalanced braces")
			}
			return nil, p.errf("expected ',' or '}' after field %q", key)
		}
	}
}

// parseIdent recognizes a field name: [A-Za-z_][A-Za-z0-9_]*.
func (p *parser) parseIdent() (string, error) {
	p.skipSpace()
	start := p.pos
	for !p.eof() && isIdentByte(p.peek()) {
		p.advance()
	}
	if p.pos == start {
		return "", p.errf("expected field name")
	}
	name := p.src[start:p.pos]
	if name[0] >= '0' && name[0] <= '9' {
		return "", p.errf("field name %q must not start with a digit", name)
	}
	return name, nil
}

func isIdentByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// parseValue recognizes either a quoted scalar or a nested brace-delimited
// sequence of quoted scalars. Anything else is a grammar violation.
func (p *parser) parseValue() (record.Value, error) {
	p.skipSpace()
	if p.eof() {
		return nil, p.errf("unexpected end of input, expected value")
	}
	switch p.peek() {
	case '\'':
		s, err := p.parseQuoted()
		if err != nil {
			return nil, err
		}
		return record.Scalar(s), nil
	case '{':
		return p.parseList()
	default:
		return nil, p.errf("value must be a quoted string or a brace-delimited list")
	}
}

// parseList recognizes `{'a', 'b', ...}` with optional trailing comma.
func (p *parser) parseList() (record.Value, error) {
	p.advance() // consume '{'
	var elems record.List
	for {
		p.skipSpace()
		if p.eof() {
			return nil, p.errf("unexpected end of input inside list, unbalanced braces")
		}
		if p.peek() == '}' {
			p.advance()
			return elems, nil
		}
		s, err := p.parseQuoted()
		if err != nil {
			return nil, err
		}
		elems = append(elems, s)

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.advance()
		case '}':
			// Closing brace handled at loop top.
		default:
			if p.eof() {
				return nil, p.errf("unexpected end of input inside list, unbalanced braces")
			}
			return nil, p.errf("expected ',' or '}' in list")
		}
	}
}

// parseQuoted recognizes a single-quoted string and unescapes it.
// Recognized escapes: \\ (backslash) and \' (quote). A raw line break
// inside the quotes is a violation - stored values carry the <br/> markup
// token instead, which is ordinary text to the parser. Keeping newline
// escapes out of the grammar is what makes the round-trip property hold:
// no well-formed page can produce a value the serializer cannot emit
// verbatim.
func (p *parser) parseQuoted() (string, error) {
	p.skipSpace()
	if p.eof() || p.peek() != '\'' {
		return "", p.errf("expected single-quoted string")
	}
	p.advance()

	var b strings.Builder
	for {
		if p.eof() {
			return "", p.errf("unterminated string")
		}
		c := p.advance()
		switch c {
		case '\'':
			return b.String(), nil
		case '\n':
			return "", p.errf("raw line break inside string")
		case '\\':
			if p.eof() {
				return "", p.errf("unterminated escape")
			}
			e := p.advance()
			switch e {
			case '\\':
				b.WriteByte('\\')
			case '\'':
				b.WriteByte('\'')
			default:
				return "", p.errf("bad escape \\%s", string(e))
			}
		default:
			b.WriteByte(c)
		}
	}
}
