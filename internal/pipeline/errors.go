package pipeline

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyInProgress      = errors.New("submission already in progress")
	ErrRecordCreationFailed   = errors.New("record creation failed")
	ErrPhotoPersistenceFailed = errors.New("photo persistence failed")
)

// Stage names one step of a commit run.
type Stage string

const (
	StageRecord Stage = "record"
	StagePhotos Stage = "photos"
)

// StageError reports an aborted run. Kind is one of the stage sentinels and
// Err is the remote cause, kept for logs.
type StageError struct {
	Stage        Stage
	Kind         error
	SubmissionID string
	Err          error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
