package core

// FilterOptions narrows a record set beyond the date interval. Empty
// fields match everything; non-empty fields match via the comparison key.
type FilterOptions struct {
	Team         string
	DealCategory string
	WorkCategory string
}

// FilterRecords returns the subsequence of records, in original order,
// whose parsed month lies inside r and whose fields satisfy opt. Records
// with unparseable months are excluded, never reported.
func FilterRecords(records []TimesheetRecord, r Range, opt FilterOptions) []TimesheetRecord {
	var out []TimesheetRecord
	for _, rec := range records {
		m, err := ParseMonth(rec.Month)
		if err != nil {
			continue
		}
		if !r.ContainsMonth(m) {
			continue
		}
		if opt.Team != "" && !FieldsMatch(rec.Team, opt.Team) {
			continue
		}
		if opt.DealCategory != "" && !FieldsMatch(rec.DealCategory, opt.DealCategory) {
			continue
		}
		if opt.WorkCategory != "" && !FieldsMatch(rec.WorkCategory, opt.WorkCategory) {
			continue
		}
		out = append(out, rec)
	}
	return out
}
