package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/hdclinic/bed-scheduler/backend/internal/domain"
	"github.com/hdclinic/bed-scheduler/backend/internal/scheduler"
	"github.com/hdclinic/bed-scheduler/backend/internal/utils"
	"github.com/jackc/pgx/v5/pgconn"
)

// dateQuery reads an optional YYYY-MM-DD query parameter.
func dateQuery(r *http.Request, name string) (*civil.Date, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	d, err := civil.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("%s harus berformat YYYY-MM-DD", name)
	}
	return &d, nil
}

// dateRangeQuery reads startDate/endDate. When required is set both must be present.
func dateRangeQuery(r *http.Request, required bool) (from, to *civil.Date, err error) {
	if from, err = dateQuery(r, "startDate"); err != nil {
		return nil, nil, err
	}
	if to, err = dateQuery(r, "endDate"); err != nil {
		return nil, nil, err
	}
	if required && (from == nil || to == nil) {
		return nil, nil, errors.New("Tanggal mulai dan tanggal selesai harus diisi")
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, errors.New("Tanggal selesai tidak boleh sebelum tanggal mulai")
	}
	return from, to, nil
}

type scheduleRequest struct {
	PatientID *int64  `json:"patientID" validate:"omitempty,min=1"`
	Date      *string `json:"date" validate:"omitempty,civildate"`
	StartTime *string `json:"startTime" validate:"omitempty,clock"`
	EndTime   *string `json:"endTime" validate:"omitempty,clock"`
	Room      *string `json:"room" validate:"omitempty,max=100"`
	Machine   *string `json:"machine" validate:"omitempty,max=100"`
	BedNumber *int    `json:"bedNumber" validate:"omitempty,min=1"`
	Staff     *string `json:"staff" validate:"omitempty,max=100"`
	Notes     *string `json:"notes" validate:"omitempty,max=1000"`
	Status    *string `json:"status" validate:"omitempty,oneof=scheduled in-progress completed cancelled"`
}

// apply copies the fields present in the request onto s. Formats were
// already checked by the validator.
func (req *scheduleRequest) apply(s *domain.ScheduleSlot) {
	if req.PatientID != nil {
		s.PatientID = *req.PatientID
	}
	if req.Date != nil {
		s.Date, _ = civil.ParseDate(*req.Date)
	}
	if req.StartTime != nil {
		s.StartTime, _ = scheduler.ParseClock(*req.StartTime)
	}
	if req.EndTime != nil {
		s.EndTime, _ = scheduler.ParseClock(*req.EndTime)
	}
	if req.Room != nil {
		s.Room = *req.Room
	}
	if req.Machine != nil {
		s.Machine = *req.Machine
		if req.BedNumber == nil {
			s.BedNumber = nil
		}
	}
	if req.BedNumber != nil {
		n := *req.BedNumber
		s.BedNumber = &n
	}
	if req.Staff != nil {
		s.Staff = *req.Staff
	}
	if req.Notes != nil {
		s.Notes = *req.Notes
	}
	if req.Status != nil {
		s.Status = domain.SlotStatus(*req.Status)
	}
	scheduler.SyncBedReference(s)
}

func (h *Handler) scheduleConstraintError(w http.ResponseWriter, r *http.Request, err error) {
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr):
		switch pgErr.ConstraintName {
		case "schedule_slots_patient_id_fkey":
			h.errorResponse(w, r, "Pasien tidak ditemukan")
		case "schedule_slots_time_check":
			h.errorResponse(w, r, "Waktu selesai harus setelah waktu mulai")
		default:
			h.internalServerError(w, r, err)
		}
	case errors.Is(err, sql.ErrNoRows):
		h.errorResponse(w, r, "Jadwal sudah berubah, silakan muat ulang")
	default:
		h.internalServerError(w, r, err)
	}
}

func (h *Handler) GetSchedules(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRangeQuery(r, false)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	slots, err := h.repository.ListSlotsInRange(r.Context(), from, to)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Daftar jadwal berhasil diambil", slots)
}

func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if req.PatientID == nil || req.Date == nil || req.StartTime == nil || req.EndTime == nil {
		h.errorResponse(w, r, "Pasien, tanggal, waktu mulai dan waktu selesai wajib diisi")
		return
	}

	slot := &domain.ScheduleSlot{Status: domain.StatusScheduled}
	req.apply(slot)

	if err := utils.ValidateSlotTimes(slot); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.CreateSlot(r.Context(), slot); err != nil {
		h.scheduleConstraintError(w, r, err)
		return
	}

	h.successResponse(w, r, "Jadwal berhasil dibuat", slot)
}

func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	slot := r.Context().Value(ScheduleSlotCtx).(*domain.ScheduleSlot)
	h.successResponse(w, r, "Jadwal berhasil diambil", slot)
}

func (h *Handler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	slot := r.Context().Value(ScheduleSlotCtx).(*domain.ScheduleSlot)
	req.apply(slot)

	if err := utils.ValidateSlotTimes(slot); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.UpdateSlot(r.Context(), slot); err != nil {
		h.scheduleConstraintError(w, r, err)
		return
	}

	h.successResponse(w, r, "Jadwal berhasil diperbarui", slot)
}

func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	slot := r.Context().Value(ScheduleSlotCtx).(*domain.ScheduleSlot)

	if err := h.repository.DeleteSlot(r.Context(), slot.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Jadwal berhasil dihapus", nil)
}

func (h *Handler) UpdateScheduleStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	slot := r.Context().Value(ScheduleSlotCtx).(*domain.ScheduleSlot)

	updated, err := h.engine.SetStatus(r.Context(), slot.ID, req.Status)
	if err != nil {
		h.engineError(w, r, err)
		return
	}

	h.successResponse(w, r, "Status jadwal berhasil diperbarui", updated)
}

func (h *Handler) GetScheduleGrid(w http.ResponseWriter, r *http.Request) {
	grid, err := h.engine.Grid(r.Context())
	if err != nil {
		h.engineError(w, r, err)
		return
	}

	h.successResponse(w, r, "Grid jadwal berhasil diambil", grid)
}

func (h *Handler) AutoGenerateSchedules(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StartDate        string `json:"startDate" validate:"required,civildate"`
		EndDate          string `json:"endDate" validate:"required,civildate"`
		Shift            string `json:"shift" validate:"required"`
		PerShiftCapacity int    `json:"perShiftCapacity"`
		Note             string `json:"note" validate:"max=200"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	params := scheduler.GenerationParams{
		Shift:            req.Shift,
		PerShiftCapacity: req.PerShiftCapacity,
		Note:             req.Note,
	}
	params.StartDate, _ = civil.ParseDate(req.StartDate)
	params.EndDate, _ = civil.ParseDate(req.EndDate)

	result, err := h.engine.Generate(r.Context(), params)
	if err != nil {
		var batchErr *scheduler.BatchError
		if errors.As(err, &batchErr) {
			h.logInternalServerError(r, err)
			h.writeJSON(w, r, http.StatusInternalServerError, Response{
				Success: false,
				Message: fmt.Sprintf("Penjadwalan terhenti: %d dari %d jadwal tersimpan", batchErr.Inserted, batchErr.Total),
				Data:    result,
			})
			return
		}
		h.engineError(w, r, err)
		return
	}

	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	mailMessage := domain.MailMessage{
		Type: domain.MailTypeGenerationReport,
		To:   myInfo.Email,
		Data: domain.GenerationReportMailData{
			FullName:  myInfo.FullName,
			BatchID:   result.BatchID.String(),
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
			Shift:     req.Shift,
			Capacity:  req.PerShiftCapacity,
			Total:     result.Total,
		},
	}
	// the batch is already stored, so a lost report is only logged
	if err := h.mailer.PublishMail(r.Context(), mailMessage); err != nil {
		h.logger.Warn("gagal mengirim laporan penjadwalan", "batch", result.BatchID, "error", err)
	}

	h.successResponse(w, r, fmt.Sprintf("Berhasil membuat %d jadwal", result.Total), result)
}

func (h *Handler) ClearSchedules(w http.ResponseWriter, r *http.Request) {
	n, err := h.engine.ClearSlots(r.Context())
	if err != nil {
		h.engineError(w, r, err)
		return
	}

	h.successResponse(w, r, "Semua jadwal berhasil dihapus", map[string]int64{"deletedCount": n})
}

func (h *Handler) GetBedStatus(w http.ResponseWriter, r *http.Request) {
	date, err := dateQuery(r, "date")
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}
	if date == nil {
		h.errorResponse(w, r, "Tanggal dan shift harus diisi")
		return
	}

	status, err := h.engine.ResolveBeds(r.Context(), *date, r.URL.Query().Get("shift"))
	if err != nil {
		h.engineError(w, r, err)
		return
	}

	h.successResponse(w, r, "Status bed berhasil diambil", status)
}
