package query

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/regtab/regtab/internal/record"
	"github.com/regtab/regtab/internal/schema"
)

// Engine executes query descriptors over parsed collections. It holds no
// state and never mutates its input: every accumulator is function-local
// and returned by value.
type Engine struct{}

// NewEngine creates a query engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Execute evaluates one descriptor against the dataset.
func (e *Engine) Execute(data Dataset, d Descriptor) (*Result, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	switch d.Object {
	case ObjectAffiliates:
		return e.executeAffiliates(data, d)
	case ObjectFinance:
		return e.executeReportedBy(data, d, []string{schema.KeyFinancialReports, schema.KeyGrantReports})
	case ObjectReports:
		return e.executeReportedBy(data, d, []string{schema.KeyActivitiesReports})
	default:
		// Validate rejects unknown objects.
		panic("unreachable")
	}
}

// normalizeName canonicalizes a group name for join comparison. Stored
// names are NFC at the serialize boundary, but names arriving in filters
// may not be.
func normalizeName(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// eligible reports whether an organization counts at all: any recognition
// status other than the derecognised tag is eligible. Subjects that
// evaluate derecognition explicitly bypass this.
func eligible(org *record.Record) bool {
	return org.Scalar("recognition_status") != StatusDerecognised
}

// matchesType applies the affiliate-type and specific-affiliate filters.
func matchesType(org *record.Record, f Filters) bool {
	if f.Affiliate != "" && normalizeName(org.GroupName()) != normalizeName(f.Affiliate) {
		return false
	}
	if f.Type != "" && f.Type != TypeAll && org.Scalar("org_type") != f.Type {
		return false
	}
	return true
}

// matchesPlace applies the region-or-specific-country filter.
func matchesPlace(org *record.Record, f Filters) bool {
	if f.Country != "" {
		return org.Scalar("group_country") == f.Country
	}
	if f.Region != "" && f.Region != RegionAll {
		return org.Scalar("region") == f.Region
	}
	return true
}

// wantsBuckets reports whether results group by region: only when no
// specific place or affiliate narrows the scan to a single group.
func wantsBuckets(f Filters) bool {
	return f.Affiliate == "" && f.Country == "" && (f.Region == "" || f.Region == RegionAll)
}

// orgLine renders one organization as a list line: a page link when the
// record carries one, the bare name otherwise.
func orgLine(org *record.Record) string {
	name := org.GroupName()
	if page := org.Scalar("group_page"); page != "" {
		return fmt.Sprintf("[[%s|%s]]", page, name)
	}
	return name
}

// reportLine renders one report as a list line.
func reportLine(rep *record.Record) string {
	name := rep.GroupName()
	if link := rep.Scalar("report_link"); link != "" {
		return fmt.Sprintf("%s (%s)", name, link)
	}
	return name
}

func (e *Engine) executeAffiliates(data Dataset, d Descriptor) (*Result, error) {
	orgs := data[schema.KeyOrgInfos]
	f := d.Filters

	switch d.Subject {
	case SubjectBelongsTo:
		return e.belongsTo(orgs, f), nil

	case SubjectCompliant:
		return e.compliant(orgs, f)

	case SubjectRecognisedInYear:
		count := 0
		for _, org := range orgs {
			if !eligible(org) || !matchesType(org, f) || !matchesPlace(org, f) {
				continue
			}
			if f.Dates.Contains(org.Scalar("recognition_date")) {
				count++
			}
		}
		return &Result{Kind: KindCount, Count: count}, nil

	case SubjectDerecognisedInYear:
		count := 0
		for _, org := range orgs {
			if org.Scalar("recognition_status") != StatusDerecognised {
				continue
			}
			if !matchesType(org, f) || !matchesPlace(org, f) {
				continue
			}
			if f.Dates.Contains(org.Scalar("derecognition_date")) {
				count++
			}
		}
		return &Result{Kind: KindCount, Count: count}, nil

	default:
		panic("unreachable")
	}
}

// belongsTo lists matching affiliates, bucketed by region when no place
// filter narrows the scan.
func (e *Engine) belongsTo(orgs record.Collection, f Filters) *Result {
	if !wantsBuckets(f) {
		var lines []string
		for _, org := range orgs {
			if eligible(org) && matchesType(org, f) && matchesPlace(org, f) {
				lines = append(lines, orgLine(org))
			}
		}
		return &Result{Kind: KindList, Lines: lines}
	}

	buckets := newRegionBuckets()
	for _, org := range orgs {
		if eligible(org) && matchesType(org, f) {
			buckets.add(org.Scalar("region"), orgLine(org))
		}
	}
	return &Result{Kind: KindBuckets, Buckets: buckets.ordered()}
}

// compliant computes round(compliant / eligible * 100) over the filtered
// group. The denominator group is defined by the filters, e.g. "all
// User Groups" when a type filter is set.
func (e *Engine) compliant(orgs record.Collection, f Filters) (*Result, error) {
	total := 0
	matching := 0
	for _, org := range orgs {
		if !eligible(org) || !matchesType(org, f) || !matchesPlace(org, f) {
			continue
		}
		total++
		switch org.Scalar("uptodate_reporting") {
		case MarkTick, MarkTickN:
			matching++
		}
	}
	if total == 0 {
		return nil, &ZeroDenominatorError{Denominator: denominatorName(f)}
	}
	pct := int(math.Round(float64(matching) / float64(total) * 100))
	return &Result{Kind: KindPercentage, Percentage: pct}, nil
}

func denominatorName(f Filters) string {
	switch {
	case f.Affiliate != "":
		return f.Affiliate
	case f.Type != "" && f.Type != TypeAll:
		return f.Type + " affiliates"
	default:
		return "all affiliates"
	}
}

// executeReportedBy scans the named report collections, joining each
// report to its organization by normalized group name. The join is a
// linear scan over small collections; the org index is rebuilt per query,
// never cached across evaluations.
func (e *Engine) executeReportedBy(data Dataset, d Descriptor, keys []string) (*Result, error) {
	f := d.Filters
	orgs := data[schema.KeyOrgInfos]

	byName := make(map[string]*record.Record, len(orgs))
	for _, org := range orgs {
		name := normalizeName(org.GroupName())
		if _, dup := byName[name]; !dup {
			byName[name] = org
		}
	}

	grouped := wantsBuckets(f) && f.Partnership != ""
	var buckets *regionBuckets
	if grouped {
		buckets = newRegionBuckets()
	}
	var lines []string

	for _, key := range keys {
		for _, rep := range data[key] {
			if f.Affiliate != "" && normalizeName(rep.GroupName()) != normalizeName(f.Affiliate) {
				continue
			}
			if f.Partnership != "" && !containsEntry(rep.List("partnership_info"), f.Partnership) {
				continue
			}
			if !f.Dates.Contains(rep.Scalar("end_date")) {
				continue
			}

			org := byName[normalizeName(rep.GroupName())]
			needOrg := grouped || f.Country != "" || (f.Region != "" && f.Region != RegionAll) ||
				(f.Type != "" && f.Type != TypeAll)
			if needOrg && org == nil {
				// A report with no organization record cannot be placed
				// in any region or type group.
				continue
			}
			if org != nil && !(matchesType(org, f) && matchesPlace(org, f)) {
				continue
			}

			if grouped {
				buckets.add(org.Scalar("region"), reportLine(rep))
			} else {
				lines = append(lines, reportLine(rep))
			}
		}
	}

	if grouped {
		return &Result{Kind: KindBuckets, Buckets: buckets.ordered()}, nil
	}
	return &Result{Kind: KindList, Lines: lines}, nil
}

func containsEntry(list []string, entry string) bool {
	for _, e := range list {
		if e == entry {
			return true
		}
	}
	return false
}

// regionBuckets accumulates lines under the fixed region set. Lines whose
// region is not one of the fixed names are dropped: buckets are fixed and
// named, never invented from data.
type regionBuckets struct {
	lines map[string][]string
}

func newRegionBuckets() *regionBuckets {
	return &regionBuckets{lines: make(map[string][]string, len(Regions))}
}

func (b *regionBuckets) add(region, line string) {
	for _, r := range Regions {
		if r == region {
			b.lines[region] = append(b.lines[region], line)
			return
		}
	}
}

// ordered returns all fixed buckets in display order, empty ones
// included.
func (b *regionBuckets) ordered() []Bucket {
	out := make([]Bucket, len(Regions))
	for i, r := range Regions {
		out[i] = Bucket{Name: r, Lines: b.lines[r]}
	}
	return out
}
