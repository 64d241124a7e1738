package domain

import "time"

// A single sensor reading row owned by the record store.
// Value is nil when the parameter was not measured for this row.
type SampleRecord struct {
	ID          int64
	Coordinates Coordinates
	Value       *float64
	Date        time.Time
}

// Year of the sample date.
func (s SampleRecord) Year() int { return s.Date.Year() }
