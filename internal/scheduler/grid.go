package scheduler

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/hdclinic/bed-scheduler/backend/internal/domain"
)

const unknownPatientName = "Unknown"

type GridKey struct {
	Day   Weekday
	Shift Shift
}

// MarshalText renders the key as "Senin-pagi" so a Grid encodes to a JSON object.
func (k GridKey) MarshalText() ([]byte, error) {
	return []byte(k.Day.String() + "-" + string(k.Shift)), nil
}

func (k *GridKey) UnmarshalText(text []byte) error {
	dayLabel, shiftName, found := strings.Cut(string(text), "-")
	if !found {
		return fmt.Errorf("kunci grid tidak valid: %q", text)
	}

	shift, err := ParseShift(shiftName)
	if err != nil {
		return err
	}

	for _, d := range Weekdays {
		if d.String() == dayLabel {
			k.Day = d
			k.Shift = shift
			return nil
		}
	}
	return fmt.Errorf("hari tidak valid: %q", dayLabel)
}

type SlotSummary struct {
	PatientName         string     `json:"patientName"`
	MedicalRecordNumber string     `json:"medicalRecordNumber"`
	StartTime           civil.Time `json:"startTime"`
	EndTime             civil.Time `json:"endTime"`
	Room                string     `json:"room"`
	Machine             string     `json:"machine"`
}

// Grid only holds cells with at least one slot. A missing key means the cell is empty.
type Grid map[GridKey][]SlotSummary

func (g Grid) Count() int {
	n := 0
	for _, summaries := range g {
		n += len(summaries)
	}
	return n
}

func summarize(slot *domain.ScheduleSlot) SlotSummary {
	summary := SlotSummary{
		PatientName: unknownPatientName,
		StartTime:   slot.StartTime,
		EndTime:     slot.EndTime,
		Room:        slot.Room,
		Machine:     slot.Machine,
	}
	if slot.Patient != nil {
		summary.PatientName = slot.Patient.Name
		summary.MedicalRecordNumber = slot.Patient.MedicalRecordNumber
	}
	return summary
}

// BuildGrid groups slots into weekday/shift cells, keeping input order
// within each cell. Sunday slots are dropped.
func BuildGrid(slots []*domain.ScheduleSlot) Grid {
	grid := make(Grid)

	for _, slot := range slots {
		if slot == nil {
			continue
		}

		day, shift, ok := Classify(slot.Date, slot.StartTime)
		if !ok {
			continue
		}

		key := GridKey{Day: day, Shift: shift}
		grid[key] = append(grid[key], summarize(slot))
	}

	return grid
}
