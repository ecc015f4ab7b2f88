package models

// PeriodDefinition describes one teaching period of the daily grid.
// Periods are contiguous and non-overlapping; their boundaries never
// intersect a blocked window.
type PeriodDefinition struct {
	Period    int      `json:"period"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
	SlotType  SlotType `json:"slot_type"`
}

// BlockedWindow is a fixed daily time range that can never host a teaching
// slot (assembly, interval, pack-up).
type BlockedWindow struct {
	Name      string    `json:"name"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Days      []WeekDay `json:"days"`
}

// AppliesTo reports whether the window blocks the given day.
func (w BlockedWindow) AppliesTo(day WeekDay) bool {
	for _, d := range w.Days {
		if d == day {
			return true
		}
	}
	return false
}
