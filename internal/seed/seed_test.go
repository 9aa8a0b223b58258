package seed

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/hdclinic/bed-scheduler/backend/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPatientsCSV(t *testing.T) {
	input := "\uFEFFNo. RM,Nama,Tanggal Lahir,Jenis Kelamin,Alamat,Telepon,Diagnosa,Golongan Darah,Dibuat\n" +
		`"RM-001","Budi Santoso","1962-04-17","L","Jl. Asia No. 7, Medan","0812","CKD stadium 5","o","2024-01-01 08:00:00"` + "\n" +
		`RM-002,Siti,25/12/1970,Perempuan,,,,,` + "\n"

	patients, err := ReadPatientsCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, patients, 2)

	assert.Equal(t, "RM-001", patients[0].MedicalRecordNumber)
	assert.Equal(t, "Jl. Asia No. 7, Medan", patients[0].Address)
	assert.Equal(t, civil.Date{Year: 1962, Month: 4, Day: 17}, patients[0].BirthDate)
	assert.Equal(t, "O", patients[0].BloodType)

	assert.Equal(t, civil.Date{Year: 1970, Month: 12, Day: 25}, patients[1].BirthDate)
	assert.Equal(t, "P", patients[1].Gender)
}

func TestReadPatientsCSV_Errors(t *testing.T) {
	_, err := ReadPatientsCSV(strings.NewReader("Nama\nBudi\n"))
	assert.ErrorContains(t, err, "No. RM")

	_, err = ReadPatientsCSV(strings.NewReader("No. RM,Nama\nRM-001,\n"))
	assert.ErrorContains(t, err, "baris 2")

	_, err = ReadPatientsCSV(strings.NewReader("No. RM,Nama,Tanggal Lahir\nRM-001,Budi,17-04-1962\n"))
	assert.ErrorContains(t, err, "tanggal lahir")
}

type fakeCreator struct {
	seen    map[string]bool
	created []*domain.Patient
	failOn  string
}

func (f *fakeCreator) CreatePatient(_ context.Context, p *domain.Patient) error {
	if p.MedicalRecordNumber == f.failOn {
		return errors.New("connection reset")
	}
	if f.seen[p.MedicalRecordNumber] {
		return &pgconn.PgError{Code: "23505", ConstraintName: "patients_medical_record_number_key"}
	}
	f.seen[p.MedicalRecordNumber] = true
	p.ID = int64(len(f.created) + 1)
	f.created = append(f.created, p)
	return nil
}

func TestSeedPatients(t *testing.T) {
	repo := &fakeCreator{seen: map[string]bool{"RM-002": true}}
	patients := []*domain.Patient{
		{MedicalRecordNumber: "RM-001", Name: "A"},
		{MedicalRecordNumber: "RM-002", Name: "B"},
		{MedicalRecordNumber: "RM-003", Name: "C"},
	}

	inserted, skipped, err := SeedPatients(context.Background(), repo, patients)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, "RM-003", repo.created[1].MedicalRecordNumber)
}

func TestSeedPatients_StopsOnStoreError(t *testing.T) {
	repo := &fakeCreator{seen: map[string]bool{}, failOn: "RM-002"}
	patients := []*domain.Patient{
		{MedicalRecordNumber: "RM-001", Name: "A"},
		{MedicalRecordNumber: "RM-002", Name: "B"},
		{MedicalRecordNumber: "RM-003", Name: "C"},
	}

	inserted, _, err := SeedPatients(context.Background(), repo, patients)
	require.Error(t, err)
	assert.Equal(t, 1, inserted)
}

func TestReadPatientsCSV_BundledFile(t *testing.T) {
	patients, err := ReadPatientsFile("data/patients.csv")
	require.NoError(t, err)
	assert.Len(t, patients, 8)
}
