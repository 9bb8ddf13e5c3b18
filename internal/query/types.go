package query

import (
	"github.com/regtab/regtab/internal/record"
)

// Object selects the entity family a query asks about.
type Object string

const (
	// ObjectAffiliates queries organization records.
	ObjectAffiliates Object = "affiliates"

	// ObjectFinance queries financial and grant report records.
	ObjectFinance Object = "finance"

	// ObjectReports queries activity report records.
	ObjectReports Object = "reports"
)

// Subject selects what is asked about the object.
type Subject string

const (
	// SubjectBelongsTo lists affiliates belonging to a region, country,
	// or type group.
	SubjectBelongsTo Subject = "belongs-to"

	// SubjectCompliant computes the share of affiliates whose reporting
	// is up to date.
	SubjectCompliant Subject = "compliant-with-reporting"

	// SubjectRecognisedInYear counts affiliates recognised within the
	// date range.
	SubjectRecognisedInYear Subject = "recognised-in-year"

	// SubjectDerecognisedInYear counts affiliates derecognised within the
	// date range.
	SubjectDerecognisedInYear Subject = "derecognised-in-year"

	// SubjectReportedBy lists reports submitted by matching affiliates.
	SubjectReportedBy Subject = "reported-by"
)

// ValidSubjects enumerates the subjects each object supports.
var ValidSubjects = map[Object][]Subject{
	ObjectAffiliates: {
		SubjectBelongsTo,
		SubjectCompliant,
		SubjectRecognisedInYear,
		SubjectDerecognisedInYear,
	},
	ObjectFinance: {SubjectReportedBy},
	ObjectReports: {SubjectReportedBy},
}

// TypeAll matches every affiliate type.
const TypeAll = "all"

// AffiliateTypes is the closed set of organization types.
var AffiliateTypes = []string{
	"Chapter",
	"Thematic Organization",
	"User Group",
}

// RegionAll matches every region.
const RegionAll = "all"

// Regions is the fixed region set, in display order. Grouped results
// bucket into exactly these names, in exactly this order.
var Regions = []string{
	"Sub-Saharan Africa",
	"Middle East and North Africa",
	"Asia/Pacific",
	"Europe",
	"North America",
	"South/Latin America",
	"International",
}

// Recognition-status and reporting-compliance sentinels stored in
// organization records.
const (
	StatusDerecognised = "derecognised"

	MarkTick  = "Tick"
	MarkTickN = "Tick-N"
)

// Filters narrow the scanned records. Zero values mean "no constraint".
type Filters struct {
	// Type is an affiliate type, TypeAll, or "".
	Type string

	// Affiliate restricts to one specific affiliate by group name.
	Affiliate string

	// Region is one of Regions, RegionAll, or "".
	Region string

	// Country restricts by the organization's country. Mutually exclusive
	// with Region.
	Country string

	// Partnership restricts report queries to records whose
	// partnership_info list contains this entry.
	Partnership string

	// Dates bound the relevant date field, inclusive on both ends.
	Dates DateRange
}

// Descriptor is a complete query: what to scan, what to compute, and how
// to narrow it.
type Descriptor struct {
	Object  Object
	Subject Subject
	Filters Filters
}

// ResultKind tags the variant held by a Result.
type ResultKind string

const (
	// KindCount is a scalar count.
	KindCount ResultKind = "count"

	// KindPercentage is a rounded percentage.
	KindPercentage ResultKind = "percentage"

	// KindList is a flat list of rendered lines.
	KindList ResultKind = "list"

	// KindBuckets is a region-grouped list of rendered lines.
	KindBuckets ResultKind = "buckets"
)

// Bucket is one fixed, named group of list lines.
type Bucket struct {
	Name  string
	Lines []string
}

// Result is the outcome of executing a descriptor: exactly one of the
// variants is meaningful, selected by Kind.
type Result struct {
	Kind ResultKind

	Count      int
	Percentage int
	Lines      []string
	Buckets    []Bucket
}

// Dataset holds the parsed collections a query may touch, keyed by
// schema registry key.
type Dataset map[string]record.Collection
