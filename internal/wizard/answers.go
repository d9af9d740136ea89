package wizard

import (
	"fmt"

	"github.com/parisxmas/OxiDB/OxiStory/internal/catalog"
)

// Answers maps catalog field keys to what the couple typed. Values are
// stored verbatim; trimming only happens when a step is validated.
type Answers struct {
	values map[string]string
}

func NewAnswers() *Answers {
	return &Answers{values: make(map[string]string, catalog.Len())}
}

// Set overwrites the answer for a catalog field.
func (a *Answers) Set(fieldKey, value string) error {
	if _, ok := catalog.Lookup(fieldKey); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, fieldKey)
	}
	a.values[fieldKey] = value
	return nil
}

// Get returns the answer, or "" when the field was never set.
func (a *Answers) Get(fieldKey string) string {
	return a.values[fieldKey]
}

// Map returns a copy holding every catalog field.
func (a *Answers) Map() map[string]string {
	out := make(map[string]string, catalog.Len())
	for _, q := range catalog.Questions() {
		out[q.FieldKey] = a.values[q.FieldKey]
	}
	return out
}
