package query

import (
	"errors"
	"fmt"
)

// ZeroDenominatorError reports a percentage aggregate whose eligible
// denominator group is empty. Surfaced as "no data" by callers; the
// engine never produces NaN or a silent zero.
type ZeroDenominatorError struct {
	// Denominator names the group, e.g. "User Group affiliates".
	Denominator string
}

// Error implements the error interface.
func (e *ZeroDenominatorError) Error() string {
	return fmt.Sprintf("no data: denominator group %q is empty", e.Denominator)
}

// IsZeroDenominator returns true if the error is a ZeroDenominatorError.
// Uses errors.As to handle wrapped errors.
func IsZeroDenominator(err error) bool {
	var ze *ZeroDenominatorError
	return errors.As(err, &ze)
}

// DescriptorError reports a descriptor the engine cannot execute:
// unknown object, a subject the object does not support, contradictory
// or malformed filters.
type DescriptorError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *DescriptorError) Error() string {
	return fmt.Sprintf("invalid query %s: %s", e.Field, e.Message)
}

// Validate checks a descriptor before execution. Execution assumes a
// valid descriptor, so every entry path goes through here.
func (d Descriptor) Validate() error {
	subjects, ok := ValidSubjects[d.Object]
	if !ok {
		return &DescriptorError{Field: "object", Message: fmt.Sprintf("unknown object %q", d.Object)}
	}
	found := false
	for _, s := range subjects {
		if s == d.Subject {
			found = true
			break
		}
	}
	if !found {
		return &DescriptorError{
			Field:   "subject",
			Message: fmt.Sprintf("object %q does not support subject %q", d.Object, d.Subject),
		}
	}

	f := d.Filters
	if f.Type != "" && f.Type != TypeAll {
		known := false
		for _, t := range AffiliateTypes {
			if t == f.Type {
				known = true
				break
			}
		}
		if !known {
			return &DescriptorError{Field: "type", Message: fmt.Sprintf("unknown affiliate type %q", f.Type)}
		}
	}
	if f.Region != "" && f.Region != RegionAll {
		known := false
		for _, r := range Regions {
			if r == f.Region {
				known = true
				break
			}
		}
		if !known {
			return &DescriptorError{Field: "region", Message: fmt.Sprintf("unknown region %q", f.Region)}
		}
	}
	if f.Region != "" && f.Region != RegionAll && f.Country != "" {
		return &DescriptorError{Field: "region", Message: "region and country filters are mutually exclusive"}
	}
	if f.Dates.Start != "" {
		if _, ok := NormalizeDate(f.Dates.Start); !ok {
			return &DescriptorError{Field: "dates", Message: fmt.Sprintf("malformed start date %q", f.Dates.Start)}
		}
	}
	if f.Dates.End != "" {
		if _, ok := NormalizeDate(f.Dates.End); !ok {
			return &DescriptorError{Field: "dates", Message: fmt.Sprintf("malformed end date %q", f.Dates.End)}
		}
	}
	return nil
}
