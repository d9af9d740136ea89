package wizard

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownField     = errors.New("wizard: unknown field")
	ErrCapacityExceeded = errors.New("wizard: photo limit reached")
	ErrUnsupportedType  = errors.New("wizard: file is not an image")
	ErrIndexOutOfRange  = errors.New("wizard: photo index out of range")
	ErrUnknownPhotoAttr = errors.New("wizard: unknown photo attribute")
	ErrPreviewReleased  = errors.New("wizard: preview already released")
	ErrPreviewNotFound  = errors.New("wizard: preview not found")
	ErrClosed           = errors.New("wizard: photo collection closed")
)

// Reason discriminates why a step cannot be left.
type Reason string

const (
	ReasonMissingRequiredField    Reason = "missing-required-field"
	ReasonIncompletePhotoMetadata Reason = "incomplete-photo-metadata"
)

// ValidationError blocks a step transition. Title and Message are meant
// for the person filling the form.
type ValidationError struct {
	Step    int    `json:"step"`
	Reason  Reason `json:"reason"`
	Field   string `json:"field,omitempty"`
	Photos  []int  `json:"photos,omitempty"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("wizard: step %d: %s", e.Step, e.Reason)
}
