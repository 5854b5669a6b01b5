package usecase

import (
	"context"
	"maps"

	pkgerrors "github.com/pkg/errors"

	"github.com/totegamma/daybook/internal/domain"
)

// VocabularyUsecase manages a user's tags and people explicitly. Sync never deletes vocabulary,
// so this is the only way a tag or person goes away.
type VocabularyUsecase struct {
	store Store
}

func NewVocabularyUsecase(store Store) *VocabularyUsecase {
	return &VocabularyUsecase{store: store}
}

func repoFor(store Store, kind domain.MentionKind) MentionRepository {
	if kind == domain.MentionKindPerson {
		return store.People()
	}
	return store.Tags()
}

func (uc *VocabularyUsecase) List(ctx context.Context, kind domain.MentionKind, userID string) ([]domain.Mention, error) {
	ctx, span := tracer.Start(ctx, "Vocabulary.Usecase.List")
	defer span.End()

	mentions, err := repoFor(uc.store, kind).List(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, boundaryError(err, "failed to list "+string(kind))
	}
	return mentions, nil
}

func (uc *VocabularyUsecase) Update(ctx context.Context, kind domain.MentionKind, userID, id string, patch domain.MentionPatch) (domain.Mention, error) {
	ctx, span := tracer.Start(ctx, "Vocabulary.Usecase.Update")
	defer span.End()

	if kind == domain.MentionKindPerson && patch.Color != nil {
		return domain.Mention{}, domain.ValidationError{
			Message: "invalid person",
			Fields:  []domain.FieldError{{Field: "color", Message: "people have no color"}},
		}
	}

	updated, err := repoFor(uc.store, kind).Update(ctx, userID, id, patch)
	if err != nil {
		span.RecordError(err)
		return domain.Mention{}, boundaryError(err, "failed to update "+string(kind))
	}
	return updated, nil
}

// Delete removes the vocabulary item and unlinks it from every entry. Entries survive; journals
// that mentioned a deleted tag get their denormalized tag names refreshed.
func (uc *VocabularyUsecase) Delete(ctx context.Context, kind domain.MentionKind, userID, id string) error {
	ctx, span := tracer.Start(ctx, "Vocabulary.Usecase.Delete")
	defer span.End()

	err := uc.store.Transaction(ctx, 0, func(ctx context.Context, tx Store) error {
		var journals []domain.Entry
		if kind == domain.MentionKindTag {
			journalType := domain.EntryTypeJournal
			var err error
			journals, err = tx.Entries().List(ctx, domain.EntryFilter{
				UserID: userID,
				Type:   &journalType,
				TagIDs: []string{id},
				Limit:  -1, // every match
			})
			if err != nil {
				return pkgerrors.Wrap(err, "find journals")
			}
		}

		if err := repoFor(tx, kind).Delete(ctx, userID, id); err != nil {
			return err
		}

		for _, journal := range journals {
			names := make([]string, 0, len(journal.Tags))
			for _, tag := range journal.Tags {
				if tag.ID != id {
					names = append(names, tag.Name)
				}
			}
			metadata := maps.Clone(journal.Metadata)
			if metadata == nil {
				metadata = map[string]any{}
			}
			metadata["tags"] = names

			err := tx.Entries().Update(ctx, userID, journal.ID, domain.EntryPatch{Metadata: metadata})
			if err != nil {
				return pkgerrors.Wrap(err, "refresh journal tags")
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return boundaryError(err, "failed to delete "+string(kind))
	}
	return nil
}
