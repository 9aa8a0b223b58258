package repository

import (
	"context"
	"database/sql"
	"time"

	"cloud.google.com/go/civil"
	"github.com/hdclinic/bed-scheduler/backend/internal/domain"
	"github.com/hdclinic/bed-scheduler/backend/internal/scheduler"
)

var _ scheduler.Store = (*Repository)(nil)

const slotSelect = `
	SELECT
		s.id,
		s.patient_id,
		s.date::text,
		s.start_time::text,
		s.end_time::text,
		s.room,
		s.machine,
		s.bed_number,
		s.staff,
		s.notes,
		s.status,
		s.created_at,
		s.updated_at,
		s.version,
		p.name,
		p.medical_record_number
	FROM schedule_slots s
	LEFT JOIN patients p ON p.id = s.patient_id
`

type slotRow struct {
	domain.ScheduleSlot
	Date        string
	StartTime   string
	EndTime     string
	BedNumber   sql.NullInt32
	PatientName sql.NullString
	PatientMRN  sql.NullString
}

func (row *slotRow) dst() []any {
	s := &row.ScheduleSlot
	return []any{
		&s.ID,
		&s.PatientID,
		&row.Date,
		&row.StartTime,
		&row.EndTime,
		&s.Room,
		&s.Machine,
		&row.BedNumber,
		&s.Staff,
		&s.Notes,
		&s.Status,
		&s.CreatedAt,
		&s.UpdatedAt,
		&s.Version,
		&row.PatientName,
		&row.PatientMRN,
	}
}

func (row *slotRow) slot() (*domain.ScheduleSlot, error) {
	s := row.ScheduleSlot

	var err error
	if s.Date, err = civil.ParseDate(row.Date); err != nil {
		return nil, err
	}
	if s.StartTime, err = scheduler.ParseClock(row.StartTime); err != nil {
		return nil, err
	}
	if s.EndTime, err = scheduler.ParseClock(row.EndTime); err != nil {
		return nil, err
	}

	if row.BedNumber.Valid {
		n := int(row.BedNumber.Int32)
		s.BedNumber = &n
	}

	// a slot whose patient row is gone keeps a nil Patient
	if row.PatientName.Valid {
		s.Patient = &domain.PatientRef{
			ID:                  s.PatientID,
			Name:                row.PatientName.String,
			MedicalRecordNumber: row.PatientMRN.String,
		}
	}

	return &s, nil
}

func nullableBed(n *int) sql.NullInt32 {
	if n == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*n), Valid: true}
}

func clock(t civil.Time) string {
	return t.String()
}

func (r *Repository) querySlots(ctx context.Context, query string, args ...any) ([]*domain.ScheduleSlot, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make([]*domain.ScheduleSlot, 0)
	for rows.Next() {
		row := &slotRow{}
		if err := rows.Scan(row.dst()...); err != nil {
			return nil, err
		}
		s, err := row.slot()
		if err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return slots, nil
}

func (r *Repository) ListSlots(ctx context.Context) ([]*domain.ScheduleSlot, error) {
	return r.querySlots(ctx, slotSelect+` ORDER BY s.date, s.start_time, s.id`)
}

// ListSlotsInRange filters on date; a nil bound is open.
func (r *Repository) ListSlotsInRange(ctx context.Context, from, to *civil.Date) ([]*domain.ScheduleSlot, error) {
	query := slotSelect + `
		WHERE ($1::date IS NULL OR s.date >= $1::date)
		  AND ($2::date IS NULL OR s.date <= $2::date)
		ORDER BY s.date, s.start_time, s.id
	`

	return r.querySlots(ctx, query, optionalDate(from), optionalDate(to))
}

func optionalDate(d *civil.Date) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return nullableDate(*d)
}

func (r *Repository) ListSlotsByPatient(ctx context.Context, patientID int64) ([]*domain.ScheduleSlot, error) {
	query := slotSelect + `
		WHERE s.patient_id = $1
		ORDER BY s.date, s.start_time, s.id
	`

	return r.querySlots(ctx, query, patientID)
}

func (r *Repository) ListActiveSlotsInWindow(ctx context.Context, date civil.Date, start, end civil.Time) ([]*domain.ScheduleSlot, error) {
	query := slotSelect + `
		WHERE s.date = $1::date
		  AND s.start_time >= $2::time
		  AND s.start_time < $3::time
		  AND s.status IN ($4, $5)
		ORDER BY s.id
	`

	return r.querySlots(ctx, query, date.String(), clock(start), clock(end), domain.StatusScheduled, domain.StatusInProgress)
}

func (r *Repository) GetSlotByID(ctx context.Context, id int64) (*domain.ScheduleSlot, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	row := &slotRow{}
	if err := r.dbpool.QueryRowContext(ctx, slotSelect+` WHERE s.id = $1`, id).Scan(row.dst()...); err != nil {
		return nil, err
	}

	return row.slot()
}

const slotInsert = `
	INSERT INTO schedule_slots (patient_id, date, start_time, end_time, room, machine, bed_number, staff, notes, status)
	VALUES ($1, $2::date, $3::time, $4::time, $5, $6, $7, $8, $9, $10)
	RETURNING id, created_at, updated_at, version
`

func slotInsertArgs(s *domain.ScheduleSlot) []any {
	return []any{s.PatientID, s.Date.String(), clock(s.StartTime), clock(s.EndTime), s.Room, s.Machine, nullableBed(s.BedNumber), s.Staff, s.Notes, s.Status}
}

func (r *Repository) CreateSlot(ctx context.Context, s *domain.ScheduleSlot) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	dst := []any{&s.ID, &s.CreatedAt, &s.UpdatedAt, &s.Version}
	return r.dbpool.QueryRowContext(ctx, slotInsert, slotInsertArgs(s)...).Scan(dst...)
}

// InsertSlots writes the batch row by row without a surrounding
// transaction, so rows written before a failure stay.
func (r *Repository) InsertSlots(ctx context.Context, slots []*domain.ScheduleSlot) (int, error) {
	ctx, cancel := r.transactionContext(ctx)
	defer cancel()

	stmt, err := r.dbpool.PrepareContext(ctx, slotInsert)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, s := range slots {
		dst := []any{&s.ID, &s.CreatedAt, &s.UpdatedAt, &s.Version}
		if err := stmt.QueryRowContext(ctx, slotInsertArgs(s)...).Scan(dst...); err != nil {
			return i, err
		}
	}

	return len(slots), nil
}

// UpdateSlot fails with sql.ErrNoRows when s.Version is stale.
func (r *Repository) UpdateSlot(ctx context.Context, s *domain.ScheduleSlot) error {
	query := `
		UPDATE schedule_slots
		SET
			patient_id = $1,
			date = $2::date,
			start_time = $3::time,
			end_time = $4::time,
			room = $5,
			machine = $6,
			bed_number = $7,
			staff = $8,
			notes = $9,
			status = $10,
			updated_at = NOW(),
			version = version + 1
		WHERE id = $11 AND version = $12
		RETURNING created_at, updated_at, version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := append(slotInsertArgs(s), s.ID, s.Version)
	dst := []any{&s.CreatedAt, &s.UpdatedAt, &s.Version}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...)
}

// UpdateSlotStatus touches only status and updated_at.
func (r *Repository) UpdateSlotStatus(ctx context.Context, id int64, status domain.SlotStatus, updatedAt time.Time) (*domain.ScheduleSlot, error) {
	query := `
		UPDATE schedule_slots
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	execCtx, cancel := r.queryContext(ctx)
	defer cancel()

	res, err := r.dbpool.ExecContext(execCtx, query, status, updatedAt, id)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, sql.ErrNoRows
	}

	return r.GetSlotByID(ctx, id)
}

func (r *Repository) DeleteSlot(ctx context.Context, id int64) error {
	query := `
		DELETE FROM schedule_slots WHERE id = $1
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	return err
}

func (r *Repository) DeleteAllSlots(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM schedule_slots
	`

	ctx, cancel := r.transactionContext(ctx)
	defer cancel()

	res, err := r.dbpool.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
