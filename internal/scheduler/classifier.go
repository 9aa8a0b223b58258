package scheduler

import (
	"time"

	"cloud.google.com/go/civil"
)

// Weekday is a grid column. Sunday has no column.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

var weekdayLabels = map[Weekday]string{
	Monday:    "Senin",
	Tuesday:   "Selasa",
	Wednesday: "Rabu",
	Thursday:  "Kamis",
	Friday:    "Jumat",
	Saturday:  "Sabtu",
}

func (d Weekday) String() string {
	return weekdayLabels[d]
}

// weekdayOf builds the weekday from the date's components. civil.Date carries
// no zone, so no conversion can shift it onto a neighbouring day.
func weekdayOf(d civil.Date) time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

func IsSunday(d civil.Date) bool {
	return weekdayOf(d) == time.Sunday
}

// ShiftOfHour buckets a start hour. Hours before 7 fall through to the
// morning shift and anything from 19 on is evening, with no upper bound.
func ShiftOfHour(hour int) Shift {
	switch {
	case hour >= 19:
		return ShiftEvening
	case hour >= 15:
		return ShiftAfternoon
	case hour >= 11:
		return ShiftMidday
	default:
		return ShiftMorning
	}
}

// Classify maps a slot's date and start time onto its grid cell.
// ok is false for Sundays, which have no cell.
func Classify(date civil.Date, start civil.Time) (day Weekday, shift Shift, ok bool) {
	wd := weekdayOf(date)
	if wd == time.Sunday {
		return 0, "", false
	}
	return Weekday(wd), ShiftOfHour(start.Hour), true
}
