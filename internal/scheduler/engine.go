package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/hdclinic/bed-scheduler/backend/internal/domain"
)

// Store is the persistence the engine reads and writes. Lookups of a
// missing slot return sql.ErrNoRows.
type Store interface {
	// ListRoster returns patients by creation time, oldest first.
	ListRoster(ctx context.Context) ([]*domain.Patient, error)
	ListSlots(ctx context.Context) ([]*domain.ScheduleSlot, error)
	// ListActiveSlotsInWindow returns scheduled/in-progress slots on date
	// whose start time falls in [start, end), ordered by id.
	ListActiveSlotsInWindow(ctx context.Context, date civil.Date, start, end civil.Time) ([]*domain.ScheduleSlot, error)
	// InsertSlots writes slots in order, filling in ids and timestamps.
	// It returns how many were written before any error.
	InsertSlots(ctx context.Context, slots []*domain.ScheduleSlot) (int, error)
	UpdateSlotStatus(ctx context.Context, id int64, status domain.SlotStatus, updatedAt time.Time) (*domain.ScheduleSlot, error)
	DeleteAllSlots(ctx context.Context) (int64, error)
}

// Locker serialises generation runs across processes.
type Locker interface {
	TryLock(ctx context.Context, key string) (unlock func(context.Context) error, ok bool, err error)
}

const generationLockKey = "lock_schedule_generation"

type Engine struct {
	store             Store
	layout            BedLayout
	locker            Locker
	logger            *slog.Logger
	now               func() time.Time
	generationNote    string
	maxGenerationDays int
}

type Option func(*Engine)

func WithLocker(l Locker) Option {
	return func(e *Engine) { e.locker = l }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithGenerationNote(note string) Option {
	return func(e *Engine) { e.generationNote = note }
}

// WithMaxGenerationDays caps the length of a generation range. 0 means no cap.
func WithMaxGenerationDays(days int) Option {
	return func(e *Engine) { e.maxGenerationDays = days }
}

func NewEngine(store Store, layout BedLayout, opts ...Option) *Engine {
	e := &Engine{
		store:          store,
		layout:         layout,
		logger:         slog.Default(),
		now:            time.Now,
		generationNote: DefaultGenerationNote,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Layout() BedLayout {
	return e.layout
}

func (e *Engine) Grid(ctx context.Context) (Grid, error) {
	slots, err := e.store.ListSlots(ctx)
	if err != nil {
		return nil, &StoreError{Op: "list slots", Err: err}
	}
	return BuildGrid(slots), nil
}

type GenerationResult struct {
	BatchID uuid.UUID              `json:"batchID"`
	Total   int                    `json:"totalSchedules"`
	Slots   []*domain.ScheduleSlot `json:"schedules"`
}

// Generate plans a run over the current roster and writes it as one batch.
// Once writing starts it is not interrupted by ctx; on a partial write the
// result holds the slots that were stored and the error is a *BatchError.
func (e *Engine) Generate(ctx context.Context, params GenerationParams) (*GenerationResult, error) {
	if e.maxGenerationDays > 0 && params.StartDate.IsValid() && params.EndDate.IsValid() &&
		params.EndDate.DaysSince(params.StartDate)+1 > e.maxGenerationDays {
		return nil, &ValidationError{
			Field:   "endDate",
			Message: fmt.Sprintf("rentang tanggal maksimal %d hari", e.maxGenerationDays),
		}
	}

	if e.locker != nil {
		unlock, ok, err := e.locker.TryLock(ctx, generationLockKey)
		if err != nil {
			return nil, &StoreError{Op: "acquire generation lock", Err: err}
		}
		if !ok {
			return nil, ErrGenerationInProgress
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				e.logger.Warn("gagal melepas kunci penjadwalan", "error", err)
			}
		}()
	}

	roster, err := e.store.ListRoster(ctx)
	if err != nil {
		return nil, &StoreError{Op: "list roster", Err: err}
	}

	if params.Note == "" {
		params.Note = e.generationNote
	}

	slots, err := PlanGeneration(params, roster)
	if err != nil {
		return nil, err
	}

	result := &GenerationResult{
		BatchID: uuid.New(),
		Slots:   slots,
	}

	if len(slots) == 0 {
		e.logger.Info("penjadwalan otomatis tidak menghasilkan jadwal", "batch", result.BatchID, "start", params.StartDate, "end", params.EndDate)
		return result, nil
	}

	inserted, err := e.store.InsertSlots(context.WithoutCancel(ctx), slots)
	result.Total = inserted
	result.Slots = slots[:inserted]
	if err != nil {
		e.logger.Error("penjadwalan otomatis gagal sebagian", "batch", result.BatchID, "inserted", inserted, "planned", len(slots), "error", err)
		return result, &BatchError{Inserted: inserted, Total: len(slots), Err: err}
	}

	e.logger.Info("penjadwalan otomatis selesai",
		"batch", result.BatchID,
		"start", params.StartDate,
		"end", params.EndDate,
		"shift", params.Shift,
		"capacity", params.PerShiftCapacity,
		"roster", len(roster),
		"total", inserted,
	)

	return result, nil
}

func (e *Engine) ResolveBeds(ctx context.Context, date civil.Date, shiftName string) (*BedStatus, error) {
	if !date.IsValid() {
		return nil, &ValidationError{Field: "date", Message: "tanggal tidak valid"}
	}

	shift, err := ParseShift(shiftName)
	if err != nil {
		return nil, err
	}
	w, _ := WindowOf(shift)

	slots, err := e.store.ListActiveSlotsInWindow(ctx, date, w.Start, w.End)
	if err != nil {
		return nil, &StoreError{Op: "list active slots", Err: err}
	}

	return summarizeBeds(date, shift, AllocateBeds(e.layout, slots)), nil
}

// SetStatus moves a slot to status. Moving to a terminal status frees its
// bed for the next ResolveBeds.
func (e *Engine) SetStatus(ctx context.Context, id int64, status string) (*domain.ScheduleSlot, error) {
	s := domain.SlotStatus(status)
	if !s.IsValid() {
		return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("status tidak valid: %q", status)}
	}

	slot, err := e.store.UpdateSlotStatus(ctx, id, s, e.now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, &StoreError{Op: "update slot status", Err: err}
	}

	return slot, nil
}

func (e *Engine) ClearSlots(ctx context.Context) (int64, error) {
	n, err := e.store.DeleteAllSlots(ctx)
	if err != nil {
		return 0, &StoreError{Op: "delete all slots", Err: err}
	}
	e.logger.Info("semua jadwal dihapus", "count", n)
	return n, nil
}
