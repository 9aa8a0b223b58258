// Package seed loads patient registers exported from the ward's
// spreadsheet into the database.
package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/hdclinic/bed-scheduler/backend/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

const DefaultPatientsFile = "./internal/seed/data/patients.csv"

// The columns match the patient CSV export so an export can be loaded back.
const (
	colMedicalRecordNumber = "No. RM"
	colName                = "Nama"
	colBirthDate           = "Tanggal Lahir"
	colGender              = "Jenis Kelamin"
	colAddress             = "Alamat"
	colPhone               = "Telepon"
	colDiagnosis           = "Diagnosa"
	colBloodType           = "Golongan Darah"
)

var requiredColumns = []string{colMedicalRecordNumber, colName}

type PatientCreator interface {
	CreatePatient(ctx context.Context, p *domain.Patient) error
}

// parseBirthDate accepts ISO dates and the DD/MM/YYYY form spreadsheets produce.
func parseBirthDate(s string) (civil.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return civil.Date{}, nil
	}
	if d, err := civil.ParseDate(s); err == nil {
		return d, nil
	}
	t, err := time.Parse("02/01/2006", s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("tanggal lahir tidak valid: %q", s)
	}
	return civil.DateOf(t), nil
}

func normalizeGender(s string) string {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "L", "LAKI-LAKI", "PRIA":
		return "L"
	case "P", "PEREMPUAN", "WANITA":
		return "P"
	default:
		return ""
	}
}

// ReadPatientsCSV parses a patient register. Rows without a record number
// or a name are rejected with their line number.
func ReadPatientsCSV(r io.Reader) ([]*domain.Patient, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("membaca header: %w", err)
	}
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\uFEFF")
	}

	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.TrimSpace(h)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("kolom %q tidak ditemukan", col)
		}
	}

	patients := make([]*domain.Patient, 0)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("baris %d: %w", line, err)
		}

		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		p := &domain.Patient{
			MedicalRecordNumber: get(colMedicalRecordNumber),
			Name:                get(colName),
			Gender:              normalizeGender(get(colGender)),
			Address:             get(colAddress),
			Phone:               get(colPhone),
			Diagnosis:           get(colDiagnosis),
			BloodType:           strings.ToUpper(get(colBloodType)),
		}
		if p.MedicalRecordNumber == "" || p.Name == "" {
			return nil, fmt.Errorf("baris %d: No. RM dan Nama wajib diisi", line)
		}
		if p.BirthDate, err = parseBirthDate(get(colBirthDate)); err != nil {
			return nil, fmt.Errorf("baris %d: %w", line, err)
		}

		patients = append(patients, p)
	}

	return patients, nil
}

// SeedPatients inserts patients in file order, so the file order becomes
// the generation roster order. Record numbers already present are skipped.
func SeedPatients(ctx context.Context, repo PatientCreator, patients []*domain.Patient) (inserted, skipped int, err error) {
	for _, p := range patients {
		if err := repo.CreatePatient(ctx, p); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.ConstraintName == "patients_medical_record_number_key" {
				slog.Warn("pasien sudah terdaftar, dilewati", "mrn", p.MedicalRecordNumber)
				skipped++
				continue
			}
			return inserted, skipped, err
		}
		inserted++
	}

	return inserted, skipped, nil
}

func ReadPatientsFile(path string) ([]*domain.Patient, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadPatientsCSV(file)
}

func SeedPatientsFromFile(ctx context.Context, repo PatientCreator, path string) error {
	patients, err := ReadPatientsFile(path)
	if err != nil {
		return err
	}

	inserted, skipped, err := SeedPatients(ctx, repo, patients)
	if err != nil {
		return err
	}

	slog.Info("data pasien selesai dimuat", "file", path, "inserted", inserted, "skipped", skipped)
	return nil
}
