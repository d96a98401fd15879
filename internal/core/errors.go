package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidNote     = errors.New("invalid note")
	ErrNoteTooLong     = fmt.Errorf("note too long (max %d characters)", MaxNoteLength)
	ErrMissingColumn   = errors.New("missing required column")
	ErrMissingHeader   = errors.New("missing header row")
)

// ValidationError reports a caller-supplied record that violates a record invariant.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// StorageReadError reports a backing store that exists but cannot be read or parsed.
type StorageReadError struct {
	Backend  string
	Location string
	Err      error
}

func (e *StorageReadError) Error() string {
	return fmt.Sprintf("read %s ledger %q: %v", e.Backend, e.Location, e.Err)
}

func (e *StorageReadError) Unwrap() error {
	return e.Err
}

// StorageWriteError reports a ledger that could not be persisted.
type StorageWriteError struct {
	Backend  string
	Location string
	Err      error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("write %s ledger %q: %v", e.Backend, e.Location, e.Err)
}

func (e *StorageWriteError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStorageRead reports whether err carries a *StorageReadError.
func IsStorageRead(err error) bool {
	var re *StorageReadError
	return errors.As(err, &re)
}

// IsStorageWrite reports whether err carries a *StorageWriteError.
func IsStorageWrite(err error) bool {
	var we *StorageWriteError
	return errors.As(err, &we)
}
