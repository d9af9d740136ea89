package models

import (
	"strings"
	"time"
)

// StatusAny disables status filtering.
const StatusAny = "todos"

// SubmissionFilter narrows the back-office listing.
type SubmissionFilter struct {
	// Search matches the couple's names case-insensitively or a fragment
	// of the phone number.
	Search string
	Status Status
	// From and To are calendar days, both inclusive.
	From time.Time
	To   time.Time
}

// Match reports whether s passes the filter.
func (f SubmissionFilter) Match(s *Submission) bool {
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(s.Answer("nomes")), term) &&
			!strings.Contains(s.Answer("telefone"), f.Search) {
			return false
		}
	}
	if f.Status != "" && f.Status != StatusAny && s.Status != f.Status {
		return false
	}
	if f.From.IsZero() && f.To.IsZero() {
		return true
	}
	created, err := time.Parse(time.RFC3339, s.CreatedAt)
	if err != nil {
		return false
	}
	if !f.From.IsZero() && created.Before(f.From) {
		return false
	}
	if !f.To.IsZero() {
		end := f.To.Add(24*time.Hour - time.Second)
		if created.After(end) {
			return false
		}
	}
	return true
}
