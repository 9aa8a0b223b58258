package scheduler

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/hdclinic/bed-scheduler/backend/internal/domain"
)

const DefaultGenerationNote = "Dijadwalkan otomatis"

type GenerationParams struct {
	StartDate        civil.Date
	EndDate          civil.Date
	Shift            string // a shift name or ShiftAll
	PerShiftCapacity int
	Note             string // falls back to DefaultGenerationNote
}

// rosterCursor is the round-robin position into the roster. It is owned by
// a single generation run and shared across all of its dates and shifts.
type rosterCursor struct {
	pos  int
	size int
}

// next returns the current position and advances, wrapping immediately
// once the end of the roster is reached.
func (c *rosterCursor) next() int {
	i := c.pos
	c.pos++
	if c.pos == c.size {
		c.pos = 0
	}
	return i
}

func (p *GenerationParams) validate(rosterSize int) error {
	if rosterSize == 0 {
		return &ValidationError{Field: "roster", Message: "tidak ada data pasien untuk dijadwalkan"}
	}
	if !p.StartDate.IsValid() {
		return &ValidationError{Field: "startDate", Message: "tanggal mulai tidak valid"}
	}
	if !p.EndDate.IsValid() {
		return &ValidationError{Field: "endDate", Message: "tanggal selesai tidak valid"}
	}
	if p.EndDate.Before(p.StartDate) {
		return &ValidationError{Field: "endDate", Message: "tanggal selesai tidak boleh sebelum tanggal mulai"}
	}
	if p.PerShiftCapacity < 1 {
		return &ValidationError{Field: "perShiftCapacity", Message: "kapasitas per shift minimal 1"}
	}
	return nil
}

func roomLabel(i int) string    { return fmt.Sprintf("Room %d", i/2+1) }
func machineLabel(i int) string { return fmt.Sprintf("Machine %d", i%3+1) }
func staffLabel(i int) string   { return fmt.Sprintf("Staff %d", i%5+1) }

// PlanGeneration lays out the slots for a generation run without touching
// any store. The roster must already be in creation order.
func PlanGeneration(params GenerationParams, roster []*domain.Patient) ([]*domain.ScheduleSlot, error) {
	if err := params.validate(len(roster)); err != nil {
		return nil, err
	}

	windows, err := ResolveShifts(params.Shift)
	if err != nil {
		return nil, err
	}

	note := params.Note
	if note == "" {
		note = DefaultGenerationNote
	}

	cursor := &rosterCursor{size: len(roster)}
	slots := make([]*domain.ScheduleSlot, 0)

	for date := params.StartDate; !date.After(params.EndDate); date = date.AddDays(1) {
		if IsSunday(date) {
			continue
		}

		for _, w := range windows {
			for i := 0; i < params.PerShiftCapacity; i++ {
				patient := roster[cursor.next()]

				slots = append(slots, &domain.ScheduleSlot{
					PatientID: patient.ID,
					Patient: &domain.PatientRef{
						ID:                  patient.ID,
						Name:                patient.Name,
						MedicalRecordNumber: patient.MedicalRecordNumber,
					},
					Date:      date,
					StartTime: w.Start,
					EndTime:   w.End,
					Room:      roomLabel(i),
					Machine:   machineLabel(i),
					Staff:     staffLabel(i),
					Notes:     note,
					Status:    domain.StatusScheduled,
				})
			}
		}
	}

	return slots, nil
}
