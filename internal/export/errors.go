package export

import (
	"errors"
	"fmt"
)

// ErrExportFailed matches every *ExportError through errors.Is.
var ErrExportFailed = errors.New("export failed")

// ErrNoColumnsSelected is returned before any work when the selection is empty.
var ErrNoColumnsSelected = &ValidationError{Field: "columns", Message: "at least one column must be selected"}

// ValidationError rejects an export request without touching the sink.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

// ExportError wraps a failure of the file-save collaborator.
type ExportError struct {
	Filename string
	Err      error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Filename, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

func (e *ExportError) Is(target error) bool { return target == ErrExportFailed }

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
