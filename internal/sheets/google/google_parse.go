package google

import (
	"strconv"
	"strings"

	"worklens/internal/core"
)

// Column header aliases, matched case-insensitively after trimming. The
// workbooks this imports from carry either English or Chinese headers.
var headerAliases = map[string][]string{
	"team":         {"Team", "团队"},
	"month":        {"Month", "Date", "月份", "日期"},
	"name":         {"Name", "Person", "姓名"},
	"dealCategory": {"Deal Category", "Matter Category", "项目类别"},
	"dealName":     {"Deal Name", "Matter Name", "Company", "项目名称"},
	"hours":        {"Hours", "工时"},
	"workCategory": {"Work Category", "工作类别"},
	"okrTag":       {"OKR Tag", "BSC Tag", "OKR标签"},
	"okrItem":      {"OKR Item", "BSC Item", "OKR条目"},
}

// parseRecords converts a values matrix (as returned by the Sheets API)
// into timesheet records. The first row is the header. Rows that fail
// validation are counted and dropped, never fatal.
func parseRecords(values [][]interface{}, sourcePath string) ([]core.TimesheetRecord, int) {
	if len(values) < 2 {
		return nil, 0
	}
	headers := toStrings(values[0])
	cols := map[string]int{}
	for field, aliases := range headerAliases {
		cols[field] = indexOfAny(headers, aliases)
	}
	// A sheet without month and hours columns yields nothing usable.
	if cols["month"] == -1 || cols["hours"] == -1 {
		return nil, len(values) - 1
	}

	var records []core.TimesheetRecord
	skipped := 0
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		get := func(field string) string { return safeGet(row, cols[field]) }

		hours, ok := parseHours(get("hours"))
		if !ok {
			skipped++
			continue
		}
		r := core.TimesheetRecord{
			Team:         get("team"),
			Month:        get("month"),
			Name:         get("name"),
			DealCategory: get("dealCategory"),
			DealName:     get("dealName"),
			Hours:        hours,
			WorkCategory: get("workCategory"),
			OKRTag:       get("okrTag"),
			OKRItem:      get("okrItem"),
			SourcePath:   sourcePath,
		}
		if err := r.Validate(); err != nil {
			skipped++
			continue
		}
		records = append(records, core.NewRecord(r))
	}
	return records, skipped
}

func parseHours(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	h, err := strconv.ParseFloat(s, 64)
	if err != nil || h <= 0 {
		return 0, false
	}
	return h, true
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		switch val := v.(type) {
		case string:
			out[i] = val
		case float64:
			out[i] = strconv.FormatFloat(val, 'f', -1, 64)
		case int:
			out[i] = strconv.Itoa(val)
		case bool:
			out[i] = strconv.FormatBool(val)
		}
	}
	return out
}

func indexOfAny(headers []string, aliases []string) int {
	for i, h := range headers {
		h = strings.TrimSpace(h)
		for _, a := range aliases {
			if strings.EqualFold(h, a) {
				return i
			}
		}
	}
	return -1
}

func safeGet(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
