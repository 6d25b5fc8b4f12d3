package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a receipt id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSheetNotConfigured is returned when a sheet import is requested
	// but no spreadsheet source was configured.
	ErrSheetNotConfigured = errors.New("budget sheet not configured")
)

// ValidationError reports bad caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// UnsupportedFormatError is returned for import files with an unknown extension.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Ext == "" {
		return "Unsupported file type"
	}
	return fmt.Sprintf("Unsupported file type %q", e.Ext)
}

// MissingColumnError is returned when an import table lacks a required column.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("Missing required '%s' column", e.Column)
}

// IsClientError reports whether err should be surfaced to the caller as a
// 4xx-class failure.
func IsClientError(err error) bool {
	var (
		ve *ValidationError
		ue *UnsupportedFormatError
		me *MissingColumnError
	)
	return errors.As(err, &ve) || errors.As(err, &ue) || errors.As(err, &me)
}

// StoreError marks a failure reported by the persistence gateway.
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

// WrapStore wraps a non-nil store error with the failed operation.
func WrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
