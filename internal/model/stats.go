package model

import "time"

// DayLayout is how a stats day is keyed in storage and printed on charts.
const DayLayout = "2006-01-02"

// Counter names one of the per-day counters.
type Counter string

const (
	CounterVisits   Counter = "visits"
	CounterComments Counter = "comments"
	CounterShares   Counter = "shares" // kept in the schema; nothing increments it
)

// Valid reports whether c names a known counter column.
func (c Counter) Valid() bool {
	switch c {
	case CounterVisits, CounterComments, CounterShares:
		return true
	}
	return false
}

// DayStats holds the counters for one calendar day (UTC).
type DayStats struct {
	Day      time.Time `json:"day"      db:"day"`
	Visits   int64     `json:"visits"   db:"visits"`
	Comments int64     `json:"comments" db:"comments"`
	Shares   int64     `json:"shares"   db:"shares"`
}

// Get returns the value of counter c.
func (d DayStats) Get(c Counter) int64 {
	switch c {
	case CounterVisits:
		return d.Visits
	case CounterComments:
		return d.Comments
	case CounterShares:
		return d.Shares
	}
	return 0
}

// Point is one (day, count) sample plotted on a chart.
type Point struct {
	Day   time.Time
	Count int64
}

// Truncate returns the UTC calendar day containing t.
func Truncate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
