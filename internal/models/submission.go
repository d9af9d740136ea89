package models

import (
	"encoding/json"
	"fmt"

	"github.com/parisxmas/OxiDB/OxiStory/internal/catalog"
)

// Status is the back-office lifecycle of a submission.
type Status string

const (
	StatusNew        Status = "novo"
	StatusInProgress Status = "em-andamento"
	StatusDone       Status = "finalizado"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Submission is the persisted record of a completed wizard. Answers is keyed
// by schema column (see catalog.Fields) and is flattened into the record
// when encoded.
type Submission struct {
	ID        string
	Answers   map[string]string
	Status    Status
	Notes     string
	CreatedAt string
	UpdatedAt string
	Photos    []Photo
}

// Answer returns a column value, "" when absent.
func (s *Submission) Answer(column string) string {
	return s.Answers[column]
}

// Columns encodes the record without id and photos, the shape stored by
// the repositories.
func (s *Submission) Columns() map[string]any {
	doc := make(map[string]any, len(s.Answers)+4)
	for _, f := range catalog.Fields() {
		doc[f.SchemaKey] = s.Answers[f.SchemaKey]
	}
	doc["status"] = string(s.Status)
	doc["observacoes"] = s.Notes
	doc["created_at"] = s.CreatedAt
	doc["updated_at"] = s.UpdatedAt
	return doc
}

// SubmissionFromColumns decodes a stored record.
func SubmissionFromColumns(id string, doc map[string]any) *Submission {
	s := &Submission{ID: id, Answers: make(map[string]string, len(catalog.Fields()))}
	for _, f := range catalog.Fields() {
		s.Answers[f.SchemaKey] = asString(doc[f.SchemaKey])
	}
	s.Status = Status(asString(doc["status"]))
	s.Notes = asString(doc["observacoes"])
	s.CreatedAt = asString(doc["created_at"])
	s.UpdatedAt = asString(doc["updated_at"])
	return s
}

func (s Submission) MarshalJSON() ([]byte, error) {
	doc := s.Columns()
	doc["id"] = s.ID
	photos := s.Photos
	if photos == nil {
		photos = []Photo{}
	}
	doc["submission_photos"] = photos
	return json.Marshal(doc)
}

func (s *Submission) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	doc := make(map[string]any, len(raw))
	for k, v := range raw {
		if k == "submission_photos" {
			continue
		}
		var str string
		if err := json.Unmarshal(v, &str); err == nil {
			doc[k] = str
		}
	}
	*s = *SubmissionFromColumns(asString(doc["id"]), doc)
	if photos, ok := raw["submission_photos"]; ok {
		if err := json.Unmarshal(photos, &s.Photos); err != nil {
			return fmt.Errorf("decode submission photos: %w", err)
		}
	}
	return nil
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return fmt.Sprintf("%.0f", t)
	default:
		return fmt.Sprint(t)
	}
}
