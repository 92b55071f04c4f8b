package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel errors. Typed errors below match them with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("note not found")
	ErrStorage      = errors.New("storage failure")
	ErrImportFormat = errors.New("invalid import payload")
	ErrDestroyed    = errors.New("store has been destroyed")
	ErrNotSupported = errors.New("operation not supported by repository")
)

// ValidationError lists every rule a write violated. Nothing was written.
type ValidationError struct {
	// Fields holds the first message per field, for form binding.
	Fields map[string]string
	// Problems holds every message in field order.
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports that an update or delete targeted a missing id.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("note %d not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// StorageError wraps a substrate failure with the operation that hit it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: storage failure: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// ImportFormatError rejects an import payload. Index is the offending record,
// or -1 when the payload itself could not be parsed.
type ImportFormatError struct {
	Index int
	Err   error
}

func (e *ImportFormatError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid import payload: %v", e.Err)
	}
	return fmt.Sprintf("invalid import payload: record %d: %v", e.Index, e.Err)
}

func (e *ImportFormatError) Unwrap() error { return e.Err }

func (e *ImportFormatError) Is(target error) bool { return target == ErrImportFormat }

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
