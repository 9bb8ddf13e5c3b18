package merge

import (
	"time"

	"github.com/google/uuid"
)

// Clock supplies the submission timestamp written into dos_stamp.
// Pluggable so tests get deterministic stamps.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

// stampLayout is the ISO-8601 form stored in dos_stamp.
const stampLayout = "2006-01-02T15:04:05Z"

// FormatStamp renders a time as a dos_stamp value (UTC, second
// precision).
func FormatStamp(t time.Time) string {
	return t.UTC().Format(stampLayout)
}

// IDGenerator supplies fresh unique_id tokens for inserted records.
// Pluggable so tests get deterministic ids.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues random UUID tokens. The id is opaque to the rest
// of the system; only uniqueness within a collection matters.
type UUIDGenerator struct{}

// NewID returns a fresh random token.
func (UUIDGenerator) NewID() string { return uuid.NewString() }
