// Package date provides a day-granularity Date type for ledger and
// price-snapshot timestamps. All dates are interpreted as midnight UTC.
package date

import (
	"fmt"
	"time"
)

// Format is the layout used by the ledger files (trade dates).
const Format = "2006/01/02"

// SnapshotFormat is the layout used by the price snapshot file.
const SnapshotFormat = "02/01/2006"

// Date represents a date with no lower than day granularity.
type Date struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Date for the given year, month, and day.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.Time().Date()
	return d
}

// Time returns the canonical time.Time for that day (midnight UTC).
func (d Date) Time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Today returns the current date.
func Today() Date { return New(time.Now().UTC().Date()) }

// Year returns the year of the date.
func (d Date) Year() int { return d.y }

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.m }

// Day returns the day of the month.
func (d Date) Day() int { return d.d }

// Add returns a new Date with the given number of days added.
func (d Date) Add(days int) Date { return New(d.y, d.m, d.d+days) }

// Before reports whether the day d is before x.
func (d Date) Before(x Date) bool { return d.Time().Before(x.Time()) }

// After reports whether the day d is after x.
func (d Date) After(x Date) bool { return d.Time().After(x.Time()) }

// IsZero reports whether the date is the zero value.
func (d Date) IsZero() bool { return d == Date{} }

// String formats the date in the ledger format.
func (d Date) String() string { return d.Time().Format(Format) }

// Snapshot formats the date in the price snapshot format.
func (d Date) Snapshot() string { return d.Time().Format(SnapshotFormat) }

// Parse parses a ledger date ("2024/01/31").
func Parse(str string) (Date, error) { return parse(Format, str) }

// ParseSnapshot parses a price snapshot date ("31/01/2024").
func ParseSnapshot(str string) (Date, error) { return parse(SnapshotFormat, str) }

func parse(layout, str string) (Date, error) {
	on, err := time.Parse(layout, str)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, want format %q: %w", str, layout, err)
	}
	return New(on.Date()), nil
}

// MustParse is like Parse but panics on error.
func MustParse(str string) Date {
	d, err := Parse(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// OlderThan reports whether d is strictly more than n days before now.
// It is the staleness rule applied to price quotes.
func (d Date) OlderThan(n int, now Date) bool { return d.Before(now.Add(-n)) }
