package repository

import (
	"context"
	"database/sql"

	"cloud.google.com/go/civil"
	"github.com/hdclinic/bed-scheduler/backend/internal/domain"
)

const patientColumns = `id, name, medical_record_number, birth_date::text, gender, address, phone, diagnosis, blood_type, created_at, updated_at, version`

type patientRow struct {
	domain.Patient
	BirthDate sql.NullString
}

func (row *patientRow) dst() []any {
	p := &row.Patient
	return []any{&p.ID, &p.Name, &p.MedicalRecordNumber, &row.BirthDate, &p.Gender, &p.Address, &p.Phone, &p.Diagnosis, &p.BloodType, &p.CreatedAt, &p.UpdatedAt, &p.Version}
}

func (row *patientRow) patient() (*domain.Patient, error) {
	p := row.Patient
	if row.BirthDate.Valid {
		d, err := civil.ParseDate(row.BirthDate.String)
		if err != nil {
			return nil, err
		}
		p.BirthDate = d
	}
	return &p, nil
}

// nullableDate stores the zero civil.Date as NULL.
func nullableDate(d civil.Date) sql.NullString {
	if d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func (r *Repository) scanPatients(rows *sql.Rows) ([]*domain.Patient, error) {
	defer rows.Close()

	patients := make([]*domain.Patient, 0)
	for rows.Next() {
		row := &patientRow{}
		if err := rows.Scan(row.dst()...); err != nil {
			return nil, err
		}
		p, err := row.patient()
		if err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return patients, nil
}

// GetAllPatients returns patients oldest first, which is also the roster
// order used for schedule generation.
func (r *Repository) GetAllPatients(ctx context.Context) ([]*domain.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients ORDER BY created_at, id`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return r.scanPatients(rows)
}

// GetPatientsCreatedBetween filters on the registration day, both ends inclusive.
func (r *Repository) GetPatientsCreatedBetween(ctx context.Context, from, to civil.Date) ([]*domain.Patient, error) {
	query := `SELECT ` + patientColumns + `
		FROM patients
		WHERE created_at::date BETWEEN $1::date AND $2::date
		ORDER BY created_at, id
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, from.String(), to.String())
	if err != nil {
		return nil, err
	}

	return r.scanPatients(rows)
}

func (r *Repository) ListRoster(ctx context.Context) ([]*domain.Patient, error) {
	return r.GetAllPatients(ctx)
}

func (r *Repository) GetPatientByID(ctx context.Context, id int64) (*domain.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	row := &patientRow{}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(row.dst()...); err != nil {
		return nil, err
	}

	return row.patient()
}

func (r *Repository) CreatePatient(ctx context.Context, p *domain.Patient) error {
	query := `
		INSERT INTO patients (name, medical_record_number, birth_date, gender, address, phone, diagnosis, blood_type)
		VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at, version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{p.Name, p.MedicalRecordNumber, nullableDate(p.BirthDate), p.Gender, p.Address, p.Phone, p.Diagnosis, p.BloodType}
	dst := []any{&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.Version}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...)
}

// UpdatePatient fails with sql.ErrNoRows when p.Version is stale.
func (r *Repository) UpdatePatient(ctx context.Context, p *domain.Patient) error {
	query := `
		UPDATE patients
		SET
			name = $1,
			medical_record_number = $2,
			birth_date = $3::date,
			gender = $4,
			address = $5,
			phone = $6,
			diagnosis = $7,
			blood_type = $8,
			updated_at = NOW(),
			version = version + 1
		WHERE id = $9 AND version = $10
		RETURNING created_at, updated_at, version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{p.Name, p.MedicalRecordNumber, nullableDate(p.BirthDate), p.Gender, p.Address, p.Phone, p.Diagnosis, p.BloodType, p.ID, p.Version}
	dst := []any{&p.CreatedAt, &p.UpdatedAt, &p.Version}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...)
}

// DeletePatient also removes the patient's slots.
func (r *Repository) DeletePatient(ctx context.Context, id int64) error {
	query := `
		DELETE FROM patients WHERE id = $1
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	return err
}
