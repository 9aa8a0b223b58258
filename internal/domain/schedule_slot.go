package domain

import (
	"slices"
	"time"

	"cloud.google.com/go/civil"
)

type SlotStatus string

const (
	StatusScheduled  SlotStatus = "scheduled"
	StatusInProgress SlotStatus = "in-progress"
	StatusCompleted  SlotStatus = "completed"
	StatusCancelled  SlotStatus = "cancelled"
)

var SlotStatuses = []SlotStatus{StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled}

// ActiveStatuses are the statuses in which a slot occupies its bed.
var ActiveStatuses = []SlotStatus{StatusScheduled, StatusInProgress}

func (s SlotStatus) IsValid() bool {
	return slices.Contains(SlotStatuses, s)
}

func (s SlotStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type ScheduleSlot struct {
	ID        int64       `json:"id"`
	PatientID int64       `json:"patientID"`
	Patient   *PatientRef `json:"patient"`
	Date      civil.Date  `json:"date"`
	StartTime civil.Time  `json:"startTime"`
	EndTime   civil.Time  `json:"endTime"`
	Room      string      `json:"room"`
	Machine   string      `json:"machine"` // free-text bed/machine label, "Bed {n}" by convention
	BedNumber *int        `json:"bedNumber"`
	Staff     string      `json:"staff"`
	Notes     string      `json:"notes"`
	Status    SlotStatus  `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	Version   int32       `json:"-"`
}
