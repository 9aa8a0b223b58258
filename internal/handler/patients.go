package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/hdclinic/bed-scheduler/backend/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

type patientRequest struct {
	Name                *string `json:"name" validate:"omitempty,min=1,max=200"`
	MedicalRecordNumber *string `json:"medicalRecordNumber" validate:"omitempty,min=1,max=50"`
	BirthDate           *string `json:"birthDate" validate:"omitempty,civildate"`
	Gender              *string `json:"gender" validate:"omitempty,oneof=L P"`
	Address             *string `json:"address" validate:"omitempty,max=500"`
	Phone               *string `json:"phone" validate:"omitempty,max=30"`
	Diagnosis           *string `json:"diagnosis" validate:"omitempty,max=500"`
	BloodType           *string `json:"bloodType" validate:"omitempty,oneof=A B AB O A+ A- B+ B- AB+ AB- O+ O-"`
}

// apply copies the fields present in the request onto p.
func (req *patientRequest) apply(p *domain.Patient) {
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.MedicalRecordNumber != nil {
		p.MedicalRecordNumber = *req.MedicalRecordNumber
	}
	if req.BirthDate != nil {
		// already checked by the civildate tag
		p.BirthDate, _ = civil.ParseDate(*req.BirthDate)
	}
	if req.Gender != nil {
		p.Gender = *req.Gender
	}
	if req.Address != nil {
		p.Address = *req.Address
	}
	if req.Phone != nil {
		p.Phone = *req.Phone
	}
	if req.Diagnosis != nil {
		p.Diagnosis = *req.Diagnosis
	}
	if req.BloodType != nil {
		p.BloodType = *req.BloodType
	}
}

func (h *Handler) patientConstraintError(w http.ResponseWriter, r *http.Request, err error) {
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr):
		switch pgErr.ConstraintName {
		case "patients_medical_record_number_key":
			h.badRequest(w, r, errors.New("No. RM sudah terdaftar"))
		default:
			h.internalServerError(w, r, err)
		}
	case errors.Is(err, sql.ErrNoRows):
		h.errorResponse(w, r, "Data pasien sudah berubah, silakan muat ulang")
	default:
		h.internalServerError(w, r, err)
	}
}

func (h *Handler) GetAllPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := h.repository.GetAllPatients(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Daftar pasien berhasil diambil", patients)
}

func (h *Handler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	var req patientRequest

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if req.Name == nil || req.MedicalRecordNumber == nil {
		h.errorResponse(w, r, "Nama dan No. RM wajib diisi")
		return
	}

	p := &domain.Patient{}
	req.apply(p)

	if err := h.repository.CreatePatient(r.Context(), p); err != nil {
		h.patientConstraintError(w, r, err)
		return
	}

	h.successResponse(w, r, "Pasien berhasil ditambahkan", p)
}

func (h *Handler) GetPatient(w http.ResponseWriter, r *http.Request) {
	p := r.Context().Value(PatientCtx).(*domain.Patient)
	h.successResponse(w, r, "Data pasien berhasil diambil", p)
}

func (h *Handler) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	var req patientRequest

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	p := r.Context().Value(PatientCtx).(*domain.Patient)
	req.apply(p)

	if err := h.repository.UpdatePatient(r.Context(), p); err != nil {
		h.patientConstraintError(w, r, err)
		return
	}

	h.successResponse(w, r, "Data pasien berhasil diperbarui", p)
}

func (h *Handler) DeletePatient(w http.ResponseWriter, r *http.Request) {
	p := r.Context().Value(PatientCtx).(*domain.Patient)

	if err := h.repository.DeletePatient(r.Context(), p.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Pasien berhasil dihapus", nil)
}

func (h *Handler) GetPatientSchedules(w http.ResponseWriter, r *http.Request) {
	p := r.Context().Value(PatientCtx).(*domain.Patient)

	slots, err := h.repository.ListSlotsByPatient(r.Context(), p.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Jadwal pasien berhasil diambil", slots)
}
