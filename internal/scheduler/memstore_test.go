package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/hdclinic/bed-scheduler/backend/internal/domain"
)

// memStore is an in-memory Store for engine tests.
type memStore struct {
	mu       sync.Mutex
	patients []*domain.Patient
	slots    []*domain.ScheduleSlot
	nextID   int64

	failInsertAfter int // >0: InsertSlots fails once this many rows are written
	listErr         error
}

func newMemStore(patients ...*domain.Patient) *memStore {
	return &memStore{patients: patients, nextID: 1}
}

func (m *memStore) ListRoster(_ context.Context) ([]*domain.Patient, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	roster := slices.Clone(m.patients)
	slices.SortStableFunc(roster, func(a, b *domain.Patient) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return int(a.ID - b.ID)
	})
	return roster, nil
}

func (m *memStore) ListSlots(_ context.Context) ([]*domain.ScheduleSlot, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.slots), nil
}

func (m *memStore) ListActiveSlotsInWindow(_ context.Context, date civil.Date, start, end civil.Time) ([]*domain.ScheduleSlot, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	w := ShiftWindow{Start: start, End: end}
	var out []*domain.ScheduleSlot
	for _, s := range m.slots {
		if s.Date == date && w.Contains(s.StartTime) && slices.Contains(domain.ActiveStatuses, s.Status) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) InsertSlots(_ context.Context, slots []*domain.ScheduleSlot) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range slots {
		if m.failInsertAfter > 0 && i == m.failInsertAfter {
			return i, errors.New("connection reset")
		}
		s.ID = m.nextID
		m.nextID++
		s.CreatedAt = time.Now()
		s.UpdatedAt = s.CreatedAt
		m.slots = append(m.slots, s)
	}
	return len(slots), nil
}

func (m *memStore) UpdateSlotStatus(_ context.Context, id int64, status domain.SlotStatus, updatedAt time.Time) (*domain.ScheduleSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.slots {
		if s.ID == id {
			s.Status = status
			s.UpdatedAt = updatedAt
			return s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memStore) DeleteAllSlots(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.slots))
	m.slots = nil
	return n, nil
}

func (m *memStore) add(slot *domain.ScheduleSlot) *domain.ScheduleSlot {
	m.mu.Lock()
	defer m.mu.Unlock()
	slot.ID = m.nextID
	m.nextID++
	m.slots = append(m.slots, slot)
	return slot
}

func makeRoster(n int) []*domain.Patient {
	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	roster := make([]*domain.Patient, n)
	for i := range roster {
		roster[i] = &domain.Patient{
			ID:                  int64(i + 1),
			Name:                "Pasien " + string(rune('A'+i)),
			MedicalRecordNumber: "RM-00" + string(rune('1'+i)),
			CreatedAt:           base.Add(time.Duration(i) * time.Minute),
		}
	}
	return roster
}

type fakeLocker struct {
	held     bool
	released int
}

func (f *fakeLocker) TryLock(_ context.Context, _ string) (func(context.Context) error, bool, error) {
	if f.held {
		return nil, false, nil
	}
	f.held = true
	return func(context.Context) error {
		f.held = false
		f.released++
		return nil
	}, true, nil
}
