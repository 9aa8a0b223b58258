package scheduler

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

type Shift string

const (
	ShiftMorning   Shift = "pagi"
	ShiftMidday    Shift = "siang"
	ShiftAfternoon Shift = "sore"
	ShiftEvening   Shift = "malam"
)

// ShiftAll selects every shift in canonical order when generating.
const ShiftAll = "all"

type ShiftWindow struct {
	Shift Shift      `json:"shift"`
	Start civil.Time `json:"start"`
	End   civil.Time `json:"end"`
}

// Contains reports whether t falls in [Start, End).
func (w ShiftWindow) Contains(t civil.Time) bool {
	m := minuteOfDay(t)
	return m >= minuteOfDay(w.Start) && m < minuteOfDay(w.End)
}

// ShiftWindows is the fixed shift table in canonical order.
var ShiftWindows = []ShiftWindow{
	{Shift: ShiftMorning, Start: civil.Time{Hour: 7}, End: civil.Time{Hour: 11}},
	{Shift: ShiftMidday, Start: civil.Time{Hour: 11}, End: civil.Time{Hour: 15}},
	{Shift: ShiftAfternoon, Start: civil.Time{Hour: 15}, End: civil.Time{Hour: 19}},
	{Shift: ShiftEvening, Start: civil.Time{Hour: 19}, End: civil.Time{Hour: 23}},
}

func WindowOf(shift Shift) (ShiftWindow, bool) {
	for _, w := range ShiftWindows {
		if w.Shift == shift {
			return w, true
		}
	}
	return ShiftWindow{}, false
}

func ParseShift(name string) (Shift, error) {
	w, ok := WindowOf(Shift(strings.ToLower(strings.TrimSpace(name))))
	if !ok {
		return "", &ValidationError{Field: "shift", Message: fmt.Sprintf("shift tidak dikenal: %q", name)}
	}
	return w.Shift, nil
}

// ResolveShifts turns a generation shift selector into the list of windows to fill.
func ResolveShifts(selector string) ([]ShiftWindow, error) {
	if strings.EqualFold(strings.TrimSpace(selector), ShiftAll) {
		windows := make([]ShiftWindow, len(ShiftWindows))
		copy(windows, ShiftWindows)
		return windows, nil
	}

	shift, err := ParseShift(selector)
	if err != nil {
		return nil, err
	}
	w, _ := WindowOf(shift)
	return []ShiftWindow{w}, nil
}

// ParseClock accepts "15:04" as well as "15:04:05", the latter being what
// Postgres renders for TIME columns.
func ParseClock(s string) (civil.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.TimeOf(t), nil
		}
	}
	return civil.Time{}, fmt.Errorf("format waktu tidak valid: %q", s)
}

// FormatClock renders a wall-clock time as HH:MM.
func FormatClock(t civil.Time) string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func minuteOfDay(t civil.Time) int {
	return t.Hour*60 + t.Minute
}
