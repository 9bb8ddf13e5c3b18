package testutil

import "fmt"

// SequentialIDGenerator issues predictable unique_id tokens: id-1, id-2,
// and so on.
//
// This enables deterministic test execution and golden snapshot
// comparison: the same edit sequence with the same generator produces
// byte-identical serialized pages.
//
// Thread-safety: not safe for concurrent use; tests drive edits from one
// goroutine.
type SequentialIDGenerator struct {
	prefix string
	n      int
}

// NewSequentialIDGenerator creates a generator. An empty prefix defaults
// to "id".
func NewSequentialIDGenerator(prefix string) *SequentialIDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &SequentialIDGenerator{prefix: prefix}
}

// NewID returns the next token. Implements merge.IDGenerator.
func (g *SequentialIDGenerator) NewID() string {
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
