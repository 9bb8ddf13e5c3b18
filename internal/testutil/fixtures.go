package testutil

import "github.com/regtab/regtab/internal/record"

// Org builds an organization record from scalar pairs plus an optional
// dm_structure list. Keys follow the Organizational Informations schema.
func Org(pairs map[string]string, dmStructure ...string) *record.Record {
	rec := record.New()
	// Stable field order for golden output: schema order of the fields
	// fixtures actually use.
	order := []string{
		"unique_id", "group_name", "org_type", "region", "group_country",
		"group_page", "recognition_status", "recognition_date",
		"derecognition_date", "uptodate_reporting", "dos_stamp",
	}
	for _, key := range order {
		if v, ok := pairs[key]; ok {
			rec.Set(key, record.Scalar(v))
		}
	}
	for key, v := range pairs {
		if _, present := rec.Get(key); !present {
			rec.Set(key, record.Scalar(v))
		}
	}
	if len(dmStructure) > 0 {
		rec.Set("dm_structure", record.List(dmStructure))
	}
	return rec
}

// Report builds an activity/financial report record from scalar pairs
// plus an optional partnership_info list.
func Report(pairs map[string]string, partnerships ...string) *record.Record {
	rec := record.New()
	order := []string{
		"unique_id", "group_name", "start_date", "end_date",
		"report_link", "dos_stamp",
	}
	for _, key := range order {
		if v, ok := pairs[key]; ok {
			rec.Set(key, record.Scalar(v))
		}
	}
	for key, v := range pairs {
		if _, present := rec.Get(key); !present {
			rec.Set(key, record.Scalar(v))
		}
	}
	if len(partnerships) > 0 {
		rec.Set("partnership_info", record.List(partnerships))
	}
	return rec
}
