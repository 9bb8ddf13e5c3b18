package query

import "time"

// Stored dates appear in two forms: the legacy day-first form written by
// the entry forms, and the year-first form written by imports. Both
// normalize to year-month-day so range checks are plain lexical
// comparisons.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
}

// NormalizeDate reorders a stored date to year-month-day form. The second
// return is false when the value parses under no accepted layout.
func NormalizeDate(s string) (string, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

// DateRange bounds a date field. Bounds are in either accepted form;
// an empty bound is unbounded and always satisfies.
type DateRange struct {
	Start string
	End   string
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.Start == "" && r.End == ""
}

// normalize returns the range with both bounds in year-month-day form.
// Malformed bounds are rejected by Descriptor validation before any scan,
// so this treats them as unbounded.
func (r DateRange) normalize() DateRange {
	out := DateRange{}
	if r.Start != "" {
		if n, ok := NormalizeDate(r.Start); ok {
			out.Start = n
		}
	}
	if r.End != "" {
		if n, ok := NormalizeDate(r.End); ok {
			out.End = n
		}
	}
	return out
}

// Contains reports whether a stored date value falls inside the range,
// inclusive on both bounds. A value that parses under no accepted layout
// never satisfies a bounded range but always satisfies an unbounded one:
// an absent filter constrains nothing.
func (r DateRange) Contains(stored string) bool {
	if r.IsZero() {
		return true
	}
	n, ok := NormalizeDate(stored)
	if !ok {
		return false
	}
	nr := r.normalize()
	if nr.Start != "" && n < nr.Start {
		return false
	}
	if nr.End != "" && n > nr.End {
		return false
	}
	return true
}
