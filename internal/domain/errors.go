package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotInitialized is returned when the inspector store is used before
	// it finished opening.
	ErrNotInitialized = errors.New("database not initialized")

	// ErrCaptureCancelled marks a capture the user backed out of. It is not a
	// failure.
	ErrCaptureCancelled = errors.New("photo capture cancelled")

	// ErrNoEntries is returned by export when the session has nothing to
	// report.
	ErrNoEntries = errors.New("no entries to export")

	ErrUnknownWorkType  = errors.New("unknown work type")
	ErrResultNotAllowed = errors.New("work result not allowed for work type")
)

// StoreInitError reports that the backing store could not be opened or its
// schema could not be created.
type StoreInitError struct {
	Err error
}

func (e *StoreInitError) Error() string {
	return fmt.Sprintf("store initialization failed: %v", e.Err)
}

func (e *StoreInitError) Unwrap() error { return e.Err }

// ValidationError lists the fields that failed validation.
type ValidationError struct {
	Fields []string
	Err    error
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("validation failed")
	if len(e.Fields) > 0 {
		b.WriteString(": missing ")
		b.WriteString(strings.Join(e.Fields, ", "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// PermissionDeniedError names the device permission that was refused.
type PermissionDeniedError struct {
	Permission string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied: %s", e.Permission)
}

// ExportStage identifies where a report export failed.
type ExportStage string

const (
	StageSerialize ExportStage = "serialize"
	StageWrite     ExportStage = "write"
	StageShare     ExportStage = "share"
)

// ExportError wraps a failure during report generation.
type ExportError struct {
	Stage ExportStage
	Err   error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export failed at %s: %v", e.Stage, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }
