package domain

import (
	"time"

	"cloud.google.com/go/civil"
)

type Patient struct {
	ID                  int64      `json:"id"`
	Name                string     `json:"name"`
	MedicalRecordNumber string     `json:"medicalRecordNumber"`
	BirthDate           civil.Date `json:"birthDate"`
	Gender              string     `json:"gender"`
	Address             string     `json:"address"`
	Phone               string     `json:"phone"`
	Diagnosis           string     `json:"diagnosis"`
	BloodType           string     `json:"bloodType"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
	Version             int32      `json:"-"`
}

// PatientRef is the slice of a patient that schedule read paths join in.
type PatientRef struct {
	ID                  int64  `json:"id"`
	Name                string `json:"name"`
	MedicalRecordNumber string `json:"medicalRecordNumber"`
}
