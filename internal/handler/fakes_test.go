package handler

import (
	"context"
	"database/sql"
	"slices"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/hdclinic/bed-scheduler/backend/internal/domain"
	"github.com/hdclinic/bed-scheduler/backend/internal/scheduler"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeStore is an in-memory Store that reports constraint violations the
// way PostgreSQL does.
type fakeStore struct {
	mu       sync.Mutex
	users    []*domain.User
	patients []*domain.Patient
	slots    []*domain.ScheduleSlot
	nextID   int64
	pingErr  error
}

var _ Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1}
}

func (f *fakeStore) id() int64 {
	id := f.nextID
	f.nextID++
	return id
}

func violation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

// withPatient copies s and fills in the joined patient reference.
func (f *fakeStore) withPatient(s *domain.ScheduleSlot) *domain.ScheduleSlot {
	c := *s
	c.Patient = nil
	for _, p := range f.patients {
		if p.ID == s.PatientID {
			c.Patient = &domain.PatientRef{ID: p.ID, Name: p.Name, MedicalRecordNumber: p.MedicalRecordNumber}
		}
	}
	return &c
}

func (f *fakeStore) filterSlots(keep func(*domain.ScheduleSlot) bool) []*domain.ScheduleSlot {
	out := make([]*domain.ScheduleSlot, 0)
	for _, s := range f.slots {
		if keep(s) {
			out = append(out, f.withPatient(s))
		}
	}
	return out
}

func (f *fakeStore) Ping(_ context.Context) error {
	return f.pingErr
}

func (f *fakeStore) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStore) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStore) GetAllUsers(_ context.Context) ([]*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.users), nil
}

func (f *fakeStore) CreateUser(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == user.Username {
			return violation("users_username_key")
		}
		if u.Email == user.Email {
			return violation("users_email_key")
		}
	}
	user.ID = f.id()
	user.IsActive = true
	user.CreatedAt = time.Now()
	c := *user
	f.users = append(f.users, &c)
	return nil
}

func (f *fakeStore) UpdateUser(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, u := range f.users {
		if u.ID == user.ID {
			c := *user
			f.users[i] = &c
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeStore) DeleteUser(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = slices.DeleteFunc(f.users, func(u *domain.User) bool { return u.ID == id })
	return nil
}

func (f *fakeStore) ListRoster(_ context.Context) ([]*domain.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.patients), nil
}

func (f *fakeStore) GetAllPatients(ctx context.Context) ([]*domain.Patient, error) {
	return f.ListRoster(ctx)
}

func (f *fakeStore) GetPatientsCreatedBetween(_ context.Context, from, to civil.Date) ([]*domain.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Patient, 0)
	for _, p := range f.patients {
		d := civil.DateOf(p.CreatedAt)
		if !d.Before(from) && !d.After(to) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) GetPatientByID(_ context.Context, id int64) (*domain.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.patients {
		if p.ID == id {
			c := *p
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStore) CreatePatient(_ context.Context, p *domain.Patient) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.patients {
		if existing.MedicalRecordNumber == p.MedicalRecordNumber {
			return violation("patients_medical_record_number_key")
		}
	}
	p.ID = f.id()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	c := *p
	f.patients = append(f.patients, &c)
	return nil
}

func (f *fakeStore) UpdatePatient(_ context.Context, p *domain.Patient) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.patients {
		if existing.ID != p.ID && existing.MedicalRecordNumber == p.MedicalRecordNumber {
			return violation("patients_medical_record_number_key")
		}
		if existing.ID == p.ID {
			c := *p
			f.patients[i] = &c
		}
	}
	return nil
}

func (f *fakeStore) DeletePatient(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patients = slices.DeleteFunc(f.patients, func(p *domain.Patient) bool { return p.ID == id })
	f.slots = slices.DeleteFunc(f.slots, func(s *domain.ScheduleSlot) bool { return s.PatientID == id })
	return nil
}

func (f *fakeStore) ListSlots(_ context.Context) ([]*domain.ScheduleSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filterSlots(func(*domain.ScheduleSlot) bool { return true }), nil
}

func (f *fakeStore) ListSlotsInRange(_ context.Context, from, to *civil.Date) ([]*domain.ScheduleSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filterSlots(func(s *domain.ScheduleSlot) bool {
		return (from == nil || !s.Date.Before(*from)) && (to == nil || !s.Date.After(*to))
	}), nil
}

func (f *fakeStore) ListSlotsByPatient(_ context.Context, patientID int64) ([]*domain.ScheduleSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filterSlots(func(s *domain.ScheduleSlot) bool { return s.PatientID == patientID }), nil
}

func (f *fakeStore) ListActiveSlotsInWindow(_ context.Context, date civil.Date, start, end civil.Time) ([]*domain.ScheduleSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w := scheduler.ShiftWindow{Start: start, End: end}
	return f.filterSlots(func(s *domain.ScheduleSlot) bool {
		return s.Date == date && w.Contains(s.StartTime) && slices.Contains(domain.ActiveStatuses, s.Status)
	}), nil
}

func (f *fakeStore) GetSlotByID(_ context.Context, id int64) (*domain.ScheduleSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.slots {
		if s.ID == id {
			return f.withPatient(s), nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStore) insert(s *domain.ScheduleSlot) error {
	if !slices.ContainsFunc(f.patients, func(p *domain.Patient) bool { return p.ID == s.PatientID }) {
		return &pgconn.PgError{Code: "23503", ConstraintName: "schedule_slots_patient_id_fkey"}
	}
	s.ID = f.id()
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	c := *s
	f.slots = append(f.slots, &c)
	return nil
}

func (f *fakeStore) CreateSlot(_ context.Context, s *domain.ScheduleSlot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insert(s)
}

func (f *fakeStore) InsertSlots(_ context.Context, slots []*domain.ScheduleSlot) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, s := range slots {
		if err := f.insert(s); err != nil {
			return i, err
		}
	}
	return len(slots), nil
}

func (f *fakeStore) UpdateSlot(_ context.Context, s *domain.ScheduleSlot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.slots {
		if existing.ID == s.ID {
			c := *s
			f.slots[i] = &c
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeStore) UpdateSlotStatus(_ context.Context, id int64, status domain.SlotStatus, updatedAt time.Time) (*domain.ScheduleSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.slots {
		if s.ID == id {
			s.Status = status
			s.UpdatedAt = updatedAt
			return f.withPatient(s), nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStore) DeleteSlot(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slots = slices.DeleteFunc(f.slots, func(s *domain.ScheduleSlot) bool { return s.ID == id })
	return nil
}

func (f *fakeStore) DeleteAllSlots(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := int64(len(f.slots))
	f.slots = nil
	return n, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []domain.MailMessage
	err  error
}

func (m *fakeMailer) PublishMail(_ context.Context, msg domain.MailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}
