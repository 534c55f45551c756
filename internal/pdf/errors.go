package pdf

import (
	"errors"
	"fmt"
)

var (
	// ErrNotPDF is returned for files without a .pdf extension.
	ErrNotPDF = errors.New("file is not a PDF")
	// ErrEmptyDocument is returned for zero-byte input.
	ErrEmptyDocument = errors.New("document is empty")
	// ErrFileTooLarge is returned when input exceeds the configured limit.
	ErrFileTooLarge = errors.New("file too large")
)

// DocumentError reports a document that could not be read at all.
type DocumentError struct {
	Name string
	Op   string
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Name, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// IsDocumentError reports whether err is an unrecoverable document failure.
func IsDocumentError(err error) bool {
	var de *DocumentError
	return errors.As(err, &de)
}
