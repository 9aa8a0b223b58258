package scheduler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/hdclinic/bed-scheduler/backend/internal/domain"
)

type BedState string

const (
	BedAvailable BedState = "available"
	BedOccupied  BedState = "occupied"
)

// BedLayout splits the ward's beds into consecutive rooms (or floors).
// Groups[i] is the number of beds in room i+1.
type BedLayout struct {
	Groups []int `json:"groups"`
}

// UniformLayout is totalBeds split into rooms of groupSize; the last room
// takes the remainder.
func UniformLayout(totalBeds, groupSize int) (BedLayout, error) {
	if totalBeds < 1 || groupSize < 1 {
		return BedLayout{}, errors.New("jumlah bed dan bed per ruang harus positif")
	}

	groups := make([]int, 0, (totalBeds+groupSize-1)/groupSize)
	for remaining := totalBeds; remaining > 0; remaining -= groupSize {
		groups = append(groups, min(groupSize, remaining))
	}
	return BedLayout{Groups: groups}, nil
}

func GroupedLayout(groups ...int) (BedLayout, error) {
	if len(groups) == 0 {
		return BedLayout{}, errors.New("layout bed kosong")
	}
	for _, g := range groups {
		if g < 1 {
			return BedLayout{}, fmt.Errorf("ukuran grup bed tidak valid: %d", g)
		}
	}
	return BedLayout{Groups: append([]int(nil), groups...)}, nil
}

// DefaultLayout is 12 beds in three rooms of four.
func DefaultLayout() BedLayout {
	return BedLayout{Groups: []int{4, 4, 4}}
}

// FloorLayout is the two-floor ward of 22 and 10 beds.
func FloorLayout() BedLayout {
	return BedLayout{Groups: []int{22, 10}}
}

func (l BedLayout) TotalBeds() int {
	total := 0
	for _, g := range l.Groups {
		total += g
	}
	return total
}

// GroupOf returns the 1-based room of a 1-based bed number, or 0 when out of range.
func (l BedLayout) GroupOf(bed int) int {
	upper := 0
	for i, g := range l.Groups {
		upper += g
		if bed >= 1 && bed <= upper {
			return i + 1
		}
	}
	return 0
}

func BedLabel(n int) string {
	return "Bed " + strconv.Itoa(n)
}

// ParseBedLabel extracts n from a "Bed {n}" label.
func ParseBedLabel(label string) (int, bool) {
	rest, found := strings.CutPrefix(strings.TrimSpace(label), "Bed ")
	if !found {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

type BedSlot struct {
	BedNumber int                  `json:"bedNumber"`
	Room      int                  `json:"room"`
	Status    BedState             `json:"status"`
	Patient   *domain.PatientRef   `json:"patient"`
	Schedule  *domain.ScheduleSlot `json:"schedule"`
}

type BedStatus struct {
	Date          civil.Date `json:"date"`
	Shift         Shift      `json:"shift"`
	Beds          []BedSlot  `json:"beds"`
	TotalBeds     int        `json:"totalBeds"`
	AvailableBeds int        `json:"availableBeds"`
	OccupiedBeds  int        `json:"occupiedBeds"`
}

// occupies matches on the structured bed number when the slot has one and
// on the "Bed {n}" label otherwise, so a slot names at most one bed.
func occupies(slot *domain.ScheduleSlot, bed int) bool {
	if slot.BedNumber != nil {
		return *slot.BedNumber == bed
	}
	return slot.Machine == BedLabel(bed)
}

// AllocateBeds maps active slots onto the layout. Each bed takes the first
// slot, in the given order, that names it. Two slots naming the same bed
// are not reconciled: the later one is simply not shown.
func AllocateBeds(layout BedLayout, slots []*domain.ScheduleSlot) []BedSlot {
	total := layout.TotalBeds()
	beds := make([]BedSlot, 0, total)

	for n := 1; n <= total; n++ {
		bed := BedSlot{
			BedNumber: n,
			Room:      layout.GroupOf(n),
			Status:    BedAvailable,
		}

		for _, slot := range slots {
			if slot.Status.IsTerminal() || !occupies(slot, n) {
				continue
			}
			bed.Status = BedOccupied
			bed.Patient = slot.Patient
			bed.Schedule = slot
			break
		}

		beds = append(beds, bed)
	}

	return beds
}

func summarizeBeds(date civil.Date, shift Shift, beds []BedSlot) *BedStatus {
	status := &BedStatus{
		Date:      date,
		Shift:     shift,
		Beds:      beds,
		TotalBeds: len(beds),
	}
	for _, b := range beds {
		if b.Status == BedOccupied {
			status.OccupiedBeds++
		} else {
			status.AvailableBeds++
		}
	}
	return status
}

// SyncBedReference keeps the structured bed number and the "Bed {n}" label
// in step. A missing number is derived from the label. When the number is
// set it wins: an empty or disagreeing "Bed {n}" label is rewritten, other
// labels such as "Machine 2" are kept.
func SyncBedReference(slot *domain.ScheduleSlot) {
	if slot.BedNumber == nil {
		if n, ok := ParseBedLabel(slot.Machine); ok {
			slot.BedNumber = &n
		}
		return
	}

	if _, isBed := ParseBedLabel(slot.Machine); slot.Machine == "" || isBed {
		slot.Machine = BedLabel(*slot.BedNumber)
	}
}
