package job

import (
	"fmt"

	"github.com/pkg/errors"
)

// Job is one URL to fetch and the name to save it under.
type Job struct {
	URL  string
	Name string
}

var (
	// ErrInvalidCount is returned when the first line is not a positive integer.
	ErrInvalidCount = errors.New("number of videos must be a positive integer")
	// ErrUnexpectedEOF is returned when the input ends before all pairs were read.
	ErrUnexpectedEOF = errors.New("unexpected end of input")
)

// Field names used in EmptyFieldError.
const (
	// FieldURL marks a blank URL line.
	FieldURL = "URL"
	// FieldName marks a blank save name line.
	FieldName = "video name"
)

// EmptyFieldError reports an item whose URL or name was blank. Index is 1-based.
type EmptyFieldError struct {
	Index int
	Field string
}

func (e *EmptyFieldError) Error() string {
	return fmt.Sprintf("Empty %s for video %d", e.Field, e.Index)
}
