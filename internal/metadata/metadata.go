// Package metadata validates the type specific metadata document attached to an entry.
package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/totegamma/daybook/internal/domain"
)

type schema interface {
	validate() []domain.FieldError
}

type journalMetadata struct {
	Category *string   `json:"category,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
	Mood     *int      `json:"mood,omitempty"`
}

func (m *journalMetadata) validate() []domain.FieldError {
	if m.Mood != nil && (*m.Mood < 1 || *m.Mood > 5) {
		return []domain.FieldError{{Field: "mood", Message: "must be between 1 and 5"}}
	}
	return nil
}

type dreamMetadata struct {
	Atmosphere *string `json:"atmosphere,omitempty"`
	Clarity    *string `json:"clarity,omitempty"`
}

func (m *dreamMetadata) validate() []domain.FieldError { return nil }

type highlightMetadata struct {
	LinkedEntryID *string `json:"linked_entry_id,omitempty"`
	Importance    *string `json:"importance,omitempty"`
}

func (m *highlightMetadata) validate() []domain.FieldError {
	if m.Importance != nil && !oneOf(*m.Importance, "high", "medium", "low") {
		return []domain.FieldError{{Field: "importance", Message: "must be one of high, medium, low"}}
	}
	return nil
}

type ideaMetadata struct {
	Status *string `json:"status,omitempty"`
}

func (m *ideaMetadata) validate() []domain.FieldError { return nil }

var wisdomTypes = []string{"quote", "thought", "fact", "excerpt", "lesson"}

type wisdomMetadata struct {
	WisdomType *string `json:"wisdom_type,omitempty"`
	Author     *string `json:"author,omitempty"`
	Source     *string `json:"source,omitempty"`
}

func (m *wisdomMetadata) validate() []domain.FieldError {
	if m.WisdomType != nil && !oneOf(*m.WisdomType, wisdomTypes...) {
		return []domain.FieldError{{
			Field:   "wisdom_type",
			Message: "must be one of " + strings.Join(wisdomTypes, ", "),
		}}
	}
	return nil
}

type noteMetadata struct {
	IsPinned *bool   `json:"is_pinned,omitempty"`
	Color    *string `json:"color,omitempty"`
}

func (m *noteMetadata) validate() []domain.FieldError { return nil }

// Validator checks metadata against the schema registered for an entry type.
type Validator struct {
	schemas map[domain.EntryType]func() schema
}

func NewValidator() *Validator {
	return &Validator{
		schemas: map[domain.EntryType]func() schema{
			domain.EntryTypeJournal:   func() schema { return &journalMetadata{} },
			domain.EntryTypeDream:     func() schema { return &dreamMetadata{} },
			domain.EntryTypeHighlight: func() schema { return &highlightMetadata{} },
			domain.EntryTypeIdea:      func() schema { return &ideaMetadata{} },
			domain.EntryTypeWisdom:    func() schema { return &wisdomMetadata{} },
			domain.EntryTypeNote:      func() schema { return &noteMetadata{} },
		},
	}
}

// Validate normalizes raw metadata for the given entry type. Absent or null metadata becomes an
// empty document. Unknown and mistyped fields are rejected with a ValidationError. Types without a
// registered schema pass any JSON object through unchanged.
func (v *Validator) Validate(entryType domain.EntryType, raw json.RawMessage) (map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return map[string]any{}, nil
	}

	newSchema, ok := v.schemas[entryType]
	if !ok {
		var passthrough map[string]any
		if err := json.Unmarshal(trimmed, &passthrough); err != nil {
			return nil, invalid(domain.FieldError{Field: "metadata", Message: "must be an object"})
		}
		if passthrough == nil {
			passthrough = map[string]any{}
		}
		return passthrough, nil
	}

	s := newSchema()
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(s); err != nil {
		return nil, invalid(decodeFieldError(err))
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, invalid(domain.FieldError{Field: "metadata", Message: "unexpected trailing data"})
	}

	if fields := s.validate(); len(fields) > 0 {
		return nil, invalid(fields...)
	}

	normalized, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(normalized, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func invalid(fields ...domain.FieldError) error {
	return domain.ValidationError{Message: "invalid metadata", Fields: fields}
}

func decodeFieldError(err error) domain.FieldError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field == "" {
			return domain.FieldError{Field: "metadata", Message: "must be an object"}
		}
		return domain.FieldError{Field: typeErr.Field, Message: fmt.Sprintf("must be %s", typeErr.Type.String())}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return domain.FieldError{Field: "metadata", Message: "malformed json"}
	}

	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, "json: unknown field "); ok {
		return domain.FieldError{Field: strings.Trim(rest, `"`), Message: "unknown field"}
	}
	return domain.FieldError{Field: "metadata", Message: msg}
}

func oneOf(value string, allowed ...string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}
