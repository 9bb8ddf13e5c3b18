package store

import (
	"context"
	"sync"
)

// Memory is an in-process page store for tests and dry runs. Safe for
// concurrent use.
type Memory struct {
	mu     sync.Mutex
	pages  map[string]Page
	purged map[string]int
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		pages:  make(map[string]Page),
		purged: make(map[string]int),
	}
}

// Seed installs page content directly, bypassing revision checks. Test
// setup only.
func (m *Memory) Seed(title, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rev := m.pages[title].Revision + 1
	m.pages[title] = Page{Title: title, Text: text, Revision: rev}
}

// Fetch implements Store.
func (m *Memory) Fetch(_ context.Context, title string) (Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pages[title]
	if !ok {
		return Page{}, &PageNotFoundError{Title: title}
	}
	return p, nil
}

// Write implements Store.
func (m *Memory) Write(_ context.Context, title, text, summary string, expectRevision int64) (Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeLocked(title, text, expectRevision, false)
}

// WriteUnconditional implements Store.
func (m *Memory) WriteUnconditional(_ context.Context, title, text, summary string) (Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeLocked(title, text, 0, true)
}

func (m *Memory) writeLocked(title, text string, expectRevision int64, unconditional bool) (Page, error) {
	current := m.pages[title].Revision
	if !unconditional && current != expectRevision {
		return Page{}, &RevisionMismatchError{Title: title, Expected: expectRevision, Actual: current}
	}
	p := Page{Title: title, Text: text, Revision: current + 1}
	m.pages[title] = p
	return p, nil
}

// WriteAll implements BatchWriter. All writes are checked before any is
// applied, so a failed batch changes nothing.
func (m *Memory) WriteAll(_ context.Context, writes []PageWrite) ([]Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, w := range writes {
		current := m.pages[w.Title].Revision
		if !w.Unconditional && current != w.ExpectRevision {
			return nil, &RevisionMismatchError{Title: w.Title, Expected: w.ExpectRevision, Actual: current}
		}
	}

	out := make([]Page, len(writes))
	for i, w := range writes {
		p := Page{Title: w.Title, Text: w.Text, Revision: m.pages[w.Title].Revision + 1}
		m.pages[w.Title] = p
		out[i] = p
	}
	return out, nil
}

// Purge implements Store. The memory backend has no cache; the call is
// counted so tests can assert it happened.
func (m *Memory) Purge(_ context.Context, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purged[title]++
	return nil
}

// PurgeCount reports how many times a page was purged.
func (m *Memory) PurgeCount(title string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.purged[title]
}
