package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/hdclinic/bed-scheduler/backend/internal/domain"
	"github.com/hdclinic/bed-scheduler/backend/internal/scheduler"
)

// utf8BOM makes spreadsheet tools read the file as UTF-8.
const utf8BOM = "\uFEFF"

var (
	scheduleCSVHeader = []string{"No. RM", "Nama Pasien", "Tanggal", "Waktu Mulai", "Waktu Selesai", "Ruangan", "Mesin Dialisis", "Perawat", "Status", "Catatan"}
	patientCSVHeader  = []string{"No. RM", "Nama", "Tanggal Lahir", "Jenis Kelamin", "Alamat", "Telepon", "Diagnosa", "Golongan Darah", "Dibuat"}
)

func scheduleCSVRecord(s *domain.ScheduleSlot) []string {
	var mrn, name string
	if s.Patient != nil {
		mrn, name = s.Patient.MedicalRecordNumber, s.Patient.Name
	}
	return []string{
		mrn,
		name,
		s.Date.String(),
		scheduler.FormatClock(s.StartTime),
		scheduler.FormatClock(s.EndTime),
		s.Room,
		s.Machine,
		s.Staff,
		string(s.Status),
		s.Notes,
	}
}

func patientCSVRecord(p *domain.Patient) []string {
	birthDate := ""
	if !p.BirthDate.IsZero() {
		birthDate = p.BirthDate.String()
	}
	return []string{
		p.MedicalRecordNumber,
		p.Name,
		birthDate,
		p.Gender,
		p.Address,
		p.Phone,
		p.Diagnosis,
		p.BloodType,
		p.CreatedAt.Format(time.DateTime),
	}
}

func encodeCSV(header []string, records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(utf8BOM)

	cw := csv.NewWriter(&buf)
	if err := cw.Write(header); err != nil {
		return nil, err
	}
	if err := cw.WriteAll(records); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (h *Handler) writeCSV(w http.ResponseWriter, filename string, body []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (h *Handler) ExportSchedulesCSV(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRangeQuery(r, true)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	slots, err := h.repository.ListSlotsInRange(r.Context(), from, to)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	records := make([][]string, 0, len(slots))
	for _, s := range slots {
		records = append(records, scheduleCSVRecord(s))
	}

	body, err := encodeCSV(scheduleCSVHeader, records)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeCSV(w, fmt.Sprintf("jadwal-%s-to-%s.csv", from, to), body)
}

func (h *Handler) ExportPatientsCSV(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRangeQuery(r, true)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	patients, err := h.repository.GetPatientsCreatedBetween(r.Context(), *from, *to)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	records := make([][]string, 0, len(patients))
	for _, p := range patients {
		records = append(records, patientCSVRecord(p))
	}

	body, err := encodeCSV(patientCSVHeader, records)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeCSV(w, fmt.Sprintf("data-pasien-%s-to-%s.csv", from, to), body)
}
