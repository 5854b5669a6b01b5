package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/daybook/internal/domain"
	"github.com/totegamma/daybook/internal/usecase"
)

func TestVocabularyUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	entry, err := f.entries.Create(ctx, "alice", usecase.CreateEntryInput{
		Type:    domain.EntryTypeNote,
		Content: strptr("#garden with @sam"),
	})
	require.NoError(t, err)

	tag, err := f.vocab.Update(ctx, domain.MentionKindTag, "alice", entry.Tags[0].ID, domain.MentionPatch{
		Color: strptr("#00ff00"),
		Group: strptr("outside"),
	})
	require.NoError(t, err)
	assert.Equal(t, "garden", tag.Name)
	assert.Equal(t, "#00ff00", *tag.Color)
	assert.Equal(t, "outside", *tag.Group)

	_, err = f.vocab.Update(ctx, domain.MentionKindPerson, "alice", entry.People[0].ID, domain.MentionPatch{
		Color: strptr("#ff0000"),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	person, err := f.vocab.Update(ctx, domain.MentionKindPerson, "alice", entry.People[0].ID, domain.MentionPatch{
		Group: strptr("family"),
	})
	require.NoError(t, err)
	assert.Equal(t, "family", *person.Group)

	_, err = f.vocab.Update(ctx, domain.MentionKindTag, "bob", entry.Tags[0].ID, domain.MentionPatch{Group: strptr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVocabularyDeleteUnlinksEntries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	entry, err := f.entries.Create(ctx, "alice", usecase.CreateEntryInput{
		Type:    domain.EntryTypeNote,
		Content: strptr("#garden #tomatoes with @sam"),
	})
	require.NoError(t, err)

	require.NoError(t, f.vocab.Delete(ctx, domain.MentionKindTag, "alice", entry.Tags[0].ID))
	require.NoError(t, f.vocab.Delete(ctx, domain.MentionKindPerson, "alice", entry.People[0].ID))

	reloaded, err := f.entries.Get(ctx, "alice", entry.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"tomatoes"}, tagNames(reloaded))
	assert.Empty(t, reloaded.People)

	err = f.vocab.Delete(ctx, domain.MentionKindTag, "alice", entry.Tags[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = f.vocab.Delete(ctx, domain.MentionKindTag, "bob", entry.Tags[1].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeletingTagRefreshesJournalTags(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	journal, err := f.entries.Create(ctx, "alice", usecase.CreateEntryInput{
		Type:    domain.EntryTypeJournal,
		Content: strptr("#garden and #tomatoes"),
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"garden", "tomatoes"}, journal.Metadata["tags"])

	idea, err := f.entries.Create(ctx, "alice", usecase.CreateEntryInput{
		Type:     domain.EntryTypeIdea,
		Content:  strptr("more #garden beds"),
		Metadata: []byte(`{"status": "draft"}`),
	})
	require.NoError(t, err)

	garden := journal.Tags[0]
	require.Equal(t, "garden", garden.Name)
	require.NoError(t, f.vocab.Delete(ctx, domain.MentionKindTag, "alice", garden.ID))

	reloaded, err := f.entries.Get(ctx, "alice", journal.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"tomatoes"}, tagNames(reloaded))
	assert.Equal(t, []any{"tomatoes"}, reloaded.Metadata["tags"])
	assert.Equal(t, "General", reloaded.Metadata["category"])

	reloadedIdea, err := f.entries.Get(ctx, "alice", idea.ID)
	require.NoError(t, err)
	assert.Empty(t, reloadedIdea.Tags)
	assert.Equal(t, map[string]any{"status": "draft"}, reloadedIdea.Metadata)
}
