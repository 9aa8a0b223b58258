package repository

import (
	"database/sql"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/hdclinic/bed-scheduler/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotRow_Decode(t *testing.T) {
	row := &slotRow{
		ScheduleSlot: domain.ScheduleSlot{ID: 3, PatientID: 9, Machine: "Bed 5", Status: domain.StatusScheduled},
		Date:         "2024-01-08",
		StartTime:    "07:00:00",
		EndTime:      "11:00:00",
		BedNumber:    sql.NullInt32{Int32: 5, Valid: true},
		PatientName:  sql.NullString{String: "Ani", Valid: true},
		PatientMRN:   sql.NullString{String: "RM-001", Valid: true},
	}

	s, err := row.slot()
	require.NoError(t, err)
	assert.Equal(t, civil.Date{Year: 2024, Month: 1, Day: 8}, s.Date)
	assert.Equal(t, civil.Time{Hour: 7}, s.StartTime)
	assert.Equal(t, civil.Time{Hour: 11}, s.EndTime)
	require.NotNil(t, s.BedNumber)
	assert.Equal(t, 5, *s.BedNumber)
	require.NotNil(t, s.Patient)
	assert.Equal(t, int64(9), s.Patient.ID)
	assert.Equal(t, "RM-001", s.Patient.MedicalRecordNumber)
}

func TestSlotRow_DecodeWithoutPatientOrBed(t *testing.T) {
	row := &slotRow{Date: "2024-01-08", StartTime: "19:30:00", EndTime: "23:00:00"}

	s, err := row.slot()
	require.NoError(t, err)
	assert.Nil(t, s.Patient)
	assert.Nil(t, s.BedNumber)
	assert.Equal(t, civil.Time{Hour: 19, Minute: 30}, s.StartTime)
}

func TestSlotRow_DecodeBadDate(t *testing.T) {
	row := &slotRow{Date: "08/01/2024", StartTime: "07:00:00", EndTime: "11:00:00"}

	_, err := row.slot()
	assert.Error(t, err)
}

func TestSlotInsertArgs(t *testing.T) {
	bed := 4
	args := slotInsertArgs(&domain.ScheduleSlot{
		PatientID: 2,
		Date:      civil.Date{Year: 2024, Month: 1, Day: 9},
		StartTime: civil.Time{Hour: 11},
		EndTime:   civil.Time{Hour: 15},
		BedNumber: &bed,
		Status:    domain.StatusScheduled,
	})

	assert.Equal(t, "2024-01-09", args[1])
	assert.Equal(t, "11:00:00", args[2])
	assert.Equal(t, "15:00:00", args[3])
	assert.Equal(t, sql.NullInt32{Int32: 4, Valid: true}, args[6])
}

func TestNullableDate(t *testing.T) {
	assert.False(t, nullableDate(civil.Date{}).Valid)
	assert.Equal(t, "1970-05-01", nullableDate(civil.Date{Year: 1970, Month: 5, Day: 1}).String)
	assert.False(t, optionalDate(nil).Valid)
}
