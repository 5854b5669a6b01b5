package metadata

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/daybook/internal/domain"
)

func TestValidateAccepts(t *testing.T) {
	v := NewValidator()

	cases := []struct {
		name      string
		entryType domain.EntryType
		raw       string
		want      map[string]any
	}{
		{name: "absent", entryType: domain.EntryTypeJournal, raw: "", want: map[string]any{}},
		{name: "null", entryType: domain.EntryTypeNote, raw: "null", want: map[string]any{}},
		{
			name:      "journal",
			entryType: domain.EntryTypeJournal,
			raw:       `{"category":"Work","mood":4,"tags":["a"]}`,
			want:      map[string]any{"category": "Work", "mood": float64(4), "tags": []any{"a"}},
		},
		{
			name:      "wisdom",
			entryType: domain.EntryTypeWisdom,
			raw:       `{"wisdom_type":"quote","author":"Seneca"}`,
			want:      map[string]any{"wisdom_type": "quote", "author": "Seneca"},
		},
		{
			name:      "highlight",
			entryType: domain.EntryTypeHighlight,
			raw:       `{"importance":"low","linked_entry_id":"e1"}`,
			want:      map[string]any{"importance": "low", "linked_entry_id": "e1"},
		},
		{
			name:      "note",
			entryType: domain.EntryTypeNote,
			raw:       `{"is_pinned":false,"color":"#fff"}`,
			want:      map[string]any{"is_pinned": false, "color": "#fff"},
		},
		{
			name:      "dream",
			entryType: domain.EntryTypeDream,
			raw:       `{"atmosphere":"calm"}`,
			want:      map[string]any{"atmosphere": "calm"},
		},
		{
			name:      "idea",
			entryType: domain.EntryTypeIdea,
			raw:       `{"status":"draft"}`,
			want:      map[string]any{"status": "draft"},
		},
		{
			name:      "unknown type passes through",
			entryType: domain.EntryType("recipe"),
			raw:       `{"anything":[1,2]}`,
			want:      map[string]any{"anything": []any{float64(1), float64(2)}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := v.Validate(tc.entryType, json.RawMessage(tc.raw))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValidateRejects(t *testing.T) {
	v := NewValidator()

	cases := []struct {
		name      string
		entryType domain.EntryType
		raw       string
		field     string
	}{
		{name: "wisdom enum", entryType: domain.EntryTypeWisdom, raw: `{"wisdom_type":"not-a-real-type"}`, field: "wisdom_type"},
		{name: "mood range low", entryType: domain.EntryTypeJournal, raw: `{"mood":0}`, field: "mood"},
		{name: "mood range high", entryType: domain.EntryTypeJournal, raw: `{"mood":6}`, field: "mood"},
		{name: "mood type", entryType: domain.EntryTypeJournal, raw: `{"mood":"happy"}`, field: "mood"},
		{name: "unknown field", entryType: domain.EntryTypeNote, raw: `{"is_pinned":true,"extra":1}`, field: "extra"},
		{name: "importance enum", entryType: domain.EntryTypeHighlight, raw: `{"importance":"urgent"}`, field: "importance"},
		{name: "pinned type", entryType: domain.EntryTypeNote, raw: `{"is_pinned":"yes"}`, field: "is_pinned"},
		{name: "not an object", entryType: domain.EntryTypeIdea, raw: `[1,2]`, field: "metadata"},
		{name: "unknown type not an object", entryType: domain.EntryType("recipe"), raw: `"x"`, field: "metadata"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.Validate(tc.entryType, json.RawMessage(tc.raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrValidation))

			var verr domain.ValidationError
			require.True(t, errors.As(err, &verr))
			require.NotEmpty(t, verr.Fields)
			assert.Equal(t, tc.field, verr.Fields[0].Field)
		})
	}
}
