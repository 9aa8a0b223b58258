package scheduler

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("jadwal tidak ditemukan")
	ErrGenerationInProgress = errors.New("penjadwalan otomatis lain sedang berjalan")
)

// ValidationError is bad caller input. It is never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// StoreError wraps a failure of the underlying store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// BatchError reports a bulk insert that failed part way. Inserted rows are
// not rolled back.
type BatchError struct {
	Inserted int
	Total    int
	Err      error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("hanya %d dari %d jadwal tersimpan: %v", e.Inserted, e.Total, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

func IsValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}
