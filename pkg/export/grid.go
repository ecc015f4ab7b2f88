package export

import "strconv"

// WeekGrid is a committed week laid out for printing: one column per school
// day, one row per period.
type WeekGrid struct {
	Days    []string
	Periods []PeriodRow
}

// PeriodRow is one period across the week. Cells align with WeekGrid.Days.
type PeriodRow struct {
	Period int
	Time   string
	Cells  []string
}

// HeaderRow returns the printable column headers.
func (g WeekGrid) HeaderRow() []string {
	headers := make([]string, 0, len(g.Days)+2)
	headers = append(headers, "Period", "Time")
	return append(headers, g.Days...)
}

// Record flattens the row into printable cells, aligned with HeaderRow.
func (r PeriodRow) Record() []string {
	record := make([]string, 0, len(r.Cells)+2)
	record = append(record, strconv.Itoa(r.Period), r.Time)
	return append(record, r.Cells...)
}
