package scheduler

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/hdclinic/bed-scheduler/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanGeneration_SingleMorningShift(t *testing.T) {
	roster := makeRoster(5)
	monday := civil.Date{Year: 2024, Month: 1, Day: 8}

	slots, err := PlanGeneration(GenerationParams{
		StartDate:        monday,
		EndDate:          monday,
		Shift:            "pagi",
		PerShiftCapacity: 3,
	}, roster)
	require.NoError(t, err)
	require.Len(t, slots, 3)

	wantRooms := []string{"Room 1", "Room 1", "Room 2"}
	wantMachines := []string{"Machine 1", "Machine 2", "Machine 3"}
	for i, s := range slots {
		assert.Equal(t, roster[i].ID, s.PatientID)
		assert.Equal(t, monday, s.Date)
		assert.Equal(t, civil.Time{Hour: 7}, s.StartTime)
		assert.Equal(t, civil.Time{Hour: 11}, s.EndTime)
		assert.Equal(t, wantRooms[i], s.Room)
		assert.Equal(t, wantMachines[i], s.Machine)
		assert.Equal(t, domain.StatusScheduled, s.Status)
		assert.Equal(t, DefaultGenerationNote, s.Notes)
	}
	assert.Equal(t, "Staff 1", slots[0].Staff)
	assert.Equal(t, "Staff 3", slots[2].Staff)
}

func TestPlanGeneration_LabelsCycle(t *testing.T) {
	monday := civil.Date{Year: 2024, Month: 1, Day: 8}
	slots, err := PlanGeneration(GenerationParams{
		StartDate: monday, EndDate: monday, Shift: "siang", PerShiftCapacity: 7,
	}, makeRoster(7))
	require.NoError(t, err)
	require.Len(t, slots, 7)

	assert.Equal(t, "Room 4", slots[6].Room)
	assert.Equal(t, "Machine 1", slots[3].Machine)
	assert.Equal(t, "Machine 1", slots[6].Machine)
	assert.Equal(t, "Staff 1", slots[5].Staff)
	assert.Equal(t, "Staff 2", slots[6].Staff)
}

func TestPlanGeneration_CursorIsSharedAcrossShiftsAndDays(t *testing.T) {
	roster := makeRoster(3)
	// Monday and Tuesday, all four shifts, two per shift: 16 assignments.
	slots, err := PlanGeneration(GenerationParams{
		StartDate:        civil.Date{Year: 2024, Month: 1, Day: 8},
		EndDate:          civil.Date{Year: 2024, Month: 1, Day: 9},
		Shift:            ShiftAll,
		PerShiftCapacity: 2,
	}, roster)
	require.NoError(t, err)
	require.Len(t, slots, 16)

	for k, s := range slots {
		assert.Equal(t, roster[k%len(roster)].ID, s.PatientID, "assignment %d", k)
	}

	// Shift order inside a day is canonical.
	assert.Equal(t, civil.Time{Hour: 7}, slots[0].StartTime)
	assert.Equal(t, civil.Time{Hour: 11}, slots[2].StartTime)
	assert.Equal(t, civil.Time{Hour: 15}, slots[4].StartTime)
	assert.Equal(t, civil.Time{Hour: 19}, slots[6].StartTime)
	assert.Equal(t, civil.Date{Year: 2024, Month: 1, Day: 9}, slots[8].Date)
}

func TestPlanGeneration_SingleRosterRepeats(t *testing.T) {
	roster := makeRoster(1)
	slots, err := PlanGeneration(GenerationParams{
		StartDate:        civil.Date{Year: 2024, Month: 1, Day: 8},
		EndDate:          civil.Date{Year: 2024, Month: 1, Day: 8},
		Shift:            "sore",
		PerShiftCapacity: 4,
	}, roster)
	require.NoError(t, err)
	require.Len(t, slots, 4)
	for _, s := range slots {
		assert.Equal(t, roster[0].ID, s.PatientID)
	}
}

func TestPlanGeneration_CapacityLargerThanRoster(t *testing.T) {
	roster := makeRoster(2)
	slots, err := PlanGeneration(GenerationParams{
		StartDate:        civil.Date{Year: 2024, Month: 1, Day: 8},
		EndDate:          civil.Date{Year: 2024, Month: 1, Day: 8},
		Shift:            "pagi",
		PerShiftCapacity: 5,
	}, roster)
	require.NoError(t, err)
	require.Len(t, slots, 5)

	ids := make([]int64, len(slots))
	for i, s := range slots {
		ids[i] = s.PatientID
	}
	assert.Equal(t, []int64{1, 2, 1, 2, 1}, ids)
}

func TestPlanGeneration_SkipsSundays(t *testing.T) {
	sunday := civil.Date{Year: 2024, Month: 1, Day: 7}
	slots, err := PlanGeneration(GenerationParams{
		StartDate: sunday, EndDate: sunday, Shift: ShiftAll, PerShiftCapacity: 3,
	}, makeRoster(4))
	require.NoError(t, err)
	assert.Empty(t, slots)

	// Saturday through Monday: the Sunday in between is skipped and the
	// cursor carries on where Saturday left it.
	roster := makeRoster(4)
	slots, err = PlanGeneration(GenerationParams{
		StartDate:        civil.Date{Year: 2024, Month: 1, Day: 6},
		EndDate:          civil.Date{Year: 2024, Month: 1, Day: 8},
		Shift:            "pagi",
		PerShiftCapacity: 3,
	}, roster)
	require.NoError(t, err)
	require.Len(t, slots, 6)
	for _, s := range slots {
		assert.False(t, IsSunday(s.Date))
	}
	assert.Equal(t, roster[3].ID, slots[3].PatientID)
	assert.Equal(t, civil.Date{Year: 2024, Month: 1, Day: 8}, slots[3].Date)
}

func TestPlanGeneration_Validation(t *testing.T) {
	monday := civil.Date{Year: 2024, Month: 1, Day: 8}

	cases := map[string]struct {
		params GenerationParams
		roster []*domain.Patient
	}{
		"empty roster": {
			params: GenerationParams{StartDate: monday, EndDate: monday, Shift: "pagi", PerShiftCapacity: 1},
		},
		"reversed range": {
			params: GenerationParams{StartDate: monday, EndDate: civil.Date{Year: 2024, Month: 1, Day: 1}, Shift: "pagi", PerShiftCapacity: 1},
			roster: makeRoster(2),
		},
		"zero capacity": {
			params: GenerationParams{StartDate: monday, EndDate: monday, Shift: "pagi", PerShiftCapacity: 0},
			roster: makeRoster(2),
		},
		"unknown shift": {
			params: GenerationParams{StartDate: monday, EndDate: monday, Shift: "subuh", PerShiftCapacity: 1},
			roster: makeRoster(2),
		},
		"zero start date": {
			params: GenerationParams{EndDate: monday, Shift: "pagi", PerShiftCapacity: 1},
			roster: makeRoster(2),
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			slots, err := PlanGeneration(tc.params, tc.roster)
			require.Error(t, err)
			assert.True(t, IsValidation(err), err.Error())
			assert.Nil(t, slots)
		})
	}
}

func TestRosterCursor_PositionIsKModR(t *testing.T) {
	for _, size := range []int{1, 2, 5, 7} {
		c := &rosterCursor{size: size}
		for k := 0; k < 50; k++ {
			assert.Equal(t, k%size, c.pos, "size %d after %d", size, k)
			c.next()
		}
	}
}
