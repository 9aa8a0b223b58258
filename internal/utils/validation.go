package utils

import (
	"errors"

	"cloud.google.com/go/civil"
	"github.com/hdclinic/bed-scheduler/backend/internal/domain"
)

func secondOfDay(t civil.Time) int {
	return t.Hour*3600 + t.Minute*60 + t.Second
}

// ValidateSlotTimes checks a manually entered slot before it is stored.
func ValidateSlotTimes(slot *domain.ScheduleSlot) error {
	if !slot.Date.IsValid() {
		return errors.New("Tanggal jadwal tidak valid")
	}

	if !slot.StartTime.IsValid() || !slot.EndTime.IsValid() {
		return errors.New("Waktu jadwal tidak valid")
	}

	if secondOfDay(slot.EndTime) <= secondOfDay(slot.StartTime) {
		return errors.New("Waktu selesai harus setelah waktu mulai")
	}

	if !slot.Status.IsValid() {
		return errors.New("Status jadwal tidak valid")
	}

	return nil
}
