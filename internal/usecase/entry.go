package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"maps"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/daybook/internal/domain"
	"github.com/totegamma/daybook/internal/mention"
	"github.com/totegamma/daybook/internal/metrics"
)

var tracer = otel.Tracer("usecase")

const (
	defaultListLimit = 20
	maxListLimit     = 100

	defaultUpdateTimeout = 15 * time.Second
)

// CreateEntryInput is the create request after boundary checks.
type CreateEntryInput struct {
	Type       domain.EntryType
	Title      *string
	Content    *string
	IsStarred  bool
	EditorMode string
	Metadata   json.RawMessage
	CreatedAt  *time.Time
}

// UpdateEntryInput carries the fields to change. A nil field is not provided; an empty Content
// clears the content. A nil Metadata is not provided, a JSON null resets it.
type UpdateEntryInput struct {
	Title     *string
	Content   *string
	IsStarred *bool
	Metadata  json.RawMessage
}

type EntryOptions struct {
	Calendar Calendar
	// CreateTimeout bounds the create transaction; zero leaves it to the caller's context.
	CreateTimeout time.Duration
	// UpdateTimeout bounds the update transaction, which may run several re-extraction upserts.
	UpdateTimeout time.Duration
}

// StatsInvalidator drops cached statistics after a write.
type StatsInvalidator interface {
	Invalidate(ctx context.Context, userID string)
}

type EntryUsecase struct {
	store       Store
	validator   MetadataValidator
	activity    *ActivityService
	streaks     *StreakService
	events      EventPublisher
	invalidator StatsInvalidator
	opts        EntryOptions
}

func NewEntryUsecase(
	store Store,
	validator MetadataValidator,
	activity *ActivityService,
	streaks *StreakService,
	events EventPublisher,
	invalidator StatsInvalidator,
	opts EntryOptions,
) *EntryUsecase {
	if opts.UpdateTimeout <= 0 {
		opts.UpdateTimeout = defaultUpdateTimeout
	}
	return &EntryUsecase{
		store:       store,
		validator:   validator,
		activity:    activity,
		streaks:     streaks,
		events:      events,
		invalidator: invalidator,
		opts:        opts,
	}
}

// Create writes a new entry together with its mentions, activity and streak in one transaction.
// A journal for a day that already has one returns the existing entry instead.
func (uc *EntryUsecase) Create(ctx context.Context, userID string, input CreateEntryInput) (domain.Entry, error) {
	ctx, span := tracer.Start(ctx, "Entry.Usecase.Create")
	defer span.End()
	span.SetAttributes(attribute.String("type", string(input.Type)))

	started := time.Now()
	now := uc.opts.Calendar.Now()
	createdAt := now
	if input.CreatedAt != nil {
		createdAt = input.CreatedAt.UTC()
	}

	if input.Type == domain.EntryTypeJournal {
		from, to := uc.opts.Calendar.Bounds(createdAt)
		existing, found, err := uc.store.Entries().FindJournal(ctx, userID, from, to)
		if err != nil {
			span.RecordError(err)
			return domain.Entry{}, boundaryError(err, "failed to create entry")
		}
		if found {
			return existing, nil
		}
	}

	validated, err := uc.validator.Validate(input.Type, input.Metadata)
	if err != nil {
		span.RecordError(err)
		return domain.Entry{}, boundaryError(err, "failed to create entry")
	}

	content := deref(input.Content)
	id := uuid.NewString()
	var created domain.Entry

	err = uc.store.Transaction(ctx, uc.opts.CreateTimeout, func(ctx context.Context, tx Store) error {
		tags, err := syncMentions(ctx, tx, userID, domain.MentionKindTag, content)
		if err != nil {
			return pkgerrors.Wrap(err, "sync tags")
		}
		people, err := syncMentions(ctx, tx, userID, domain.MentionKindPerson, content)
		if err != nil {
			return pkgerrors.Wrap(err, "sync people")
		}

		metadata := validated
		if input.Type == domain.EntryTypeJournal {
			metadata = journalMetadata(validated, mentionNames(tags))
		}

		err = tx.Entries().Create(ctx, domain.NewEntry{
			ID:         id,
			UserID:     userID,
			Type:       input.Type,
			Title:      input.Title,
			Content:    input.Content,
			IsStarred:  input.IsStarred,
			EditorMode: input.EditorMode,
			Metadata:   metadata,
			TagIDs:     mentionIDs(tags),
			PersonIDs:  mentionIDs(people),
			CreatedAt:  createdAt,
		})
		if err != nil {
			return pkgerrors.Wrap(err, "insert entry")
		}

		today := uc.opts.Calendar.Day(now)
		if err := uc.activity.LogActivity(ctx, tx, userID, input.Type, today); err != nil {
			return pkgerrors.Wrap(err, "log activity")
		}
		if err := uc.streaks.UpdateStreak(ctx, tx, userID, today); err != nil {
			return pkgerrors.Wrap(err, "update streak")
		}

		created, err = tx.Entries().Get(ctx, userID, id)
		if err != nil {
			return pkgerrors.Wrap(err, "read back entry")
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return domain.Entry{}, boundaryError(err, "failed to create entry")
	}

	metrics.ObserveEntryWrite(metrics.OpCreate, string(created.Type), started)
	uc.afterWrite(ctx, domain.EventEntryCreated, created.UserID, created.ID, true)
	return created, nil
}

// Update rewrites the provided fields. New content replaces the entry's tag and person relations
// with exactly what it mentions.
func (uc *EntryUsecase) Update(ctx context.Context, userID, id string, input UpdateEntryInput) (domain.Entry, error) {
	ctx, span := tracer.Start(ctx, "Entry.Usecase.Update")
	defer span.End()

	started := time.Now()
	var updated domain.Entry

	err := uc.store.Transaction(ctx, uc.opts.UpdateTimeout, func(ctx context.Context, tx Store) error {
		current, err := tx.Entries().Get(ctx, userID, id)
		if err != nil {
			return err
		}

		patch := domain.EntryPatch{
			Title:     input.Title,
			Content:   input.Content,
			IsStarred: input.IsStarred,
		}

		if input.Metadata != nil {
			validated, err := uc.validator.Validate(current.Type, input.Metadata)
			if err != nil {
				return err
			}
			patch.Metadata = validated
		}

		if input.Content != nil {
			tags, err := syncMentions(ctx, tx, userID, domain.MentionKindTag, *input.Content)
			if err != nil {
				return pkgerrors.Wrap(err, "sync tags")
			}
			people, err := syncMentions(ctx, tx, userID, domain.MentionKindPerson, *input.Content)
			if err != nil {
				return pkgerrors.Wrap(err, "sync people")
			}
			patch.TagIDs = mentionIDs(tags)
			patch.PersonIDs = mentionIDs(people)

			if current.Type == domain.EntryTypeJournal {
				base := patch.Metadata
				if base == nil {
					base = maps.Clone(current.Metadata)
				}
				if base == nil {
					base = map[string]any{}
				}
				base["tags"] = mentionNames(tags)
				patch.Metadata = base
			}
		}

		if err := tx.Entries().Update(ctx, userID, id, patch); err != nil {
			return err
		}

		updated, err = tx.Entries().Get(ctx, userID, id)
		if err != nil {
			return pkgerrors.Wrap(err, "read back entry")
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return domain.Entry{}, boundaryError(err, "failed to update entry")
	}

	metrics.ObserveEntryWrite(metrics.OpUpdate, string(updated.Type), started)
	uc.afterWrite(ctx, domain.EventEntryUpdated, userID, id, false)
	return updated, nil
}

// Delete soft deletes an owned entry. Activity counts are left untouched.
func (uc *EntryUsecase) Delete(ctx context.Context, userID, id string) error {
	ctx, span := tracer.Start(ctx, "Entry.Usecase.Delete")
	defer span.End()

	started := time.Now()
	err := uc.store.Entries().SoftDelete(ctx, userID, id, uc.opts.Calendar.Now())
	if err != nil {
		span.RecordError(err)
		return boundaryError(err, "failed to delete entry")
	}

	metrics.ObserveEntryWrite(metrics.OpDelete, "", started)
	uc.afterWrite(ctx, domain.EventEntryDeleted, userID, id, false)
	return nil
}

func (uc *EntryUsecase) Get(ctx context.Context, userID, id string) (domain.Entry, error) {
	ctx, span := tracer.Start(ctx, "Entry.Usecase.Get")
	defer span.End()

	entry, err := uc.store.Entries().Get(ctx, userID, id)
	if err != nil {
		span.RecordError(err)
		return domain.Entry{}, boundaryError(err, "failed to get entry")
	}
	return entry, nil
}

// List returns one page of the caller's live entries, newest first.
func (uc *EntryUsecase) List(ctx context.Context, filter domain.EntryFilter) (domain.EntryPage, error) {
	ctx, span := tracer.Start(ctx, "Entry.Usecase.List")
	defer span.End()

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	filter.Limit = limit + 1

	entries, err := uc.store.Entries().List(ctx, filter)
	if err != nil {
		span.RecordError(err)
		return domain.EntryPage{}, boundaryError(err, "failed to list entries")
	}

	page := domain.EntryPage{Entries: entries}
	if len(entries) > limit {
		next := entries[limit].ID
		page.Entries = entries[:limit]
		page.NextCursor = &next
	}
	return page, nil
}

func (uc *EntryUsecase) afterWrite(ctx context.Context, eventType domain.EventType, userID, entryID string, invalidate bool) {
	if invalidate && uc.invalidator != nil {
		uc.invalidator.Invalidate(ctx, userID)
	}
	if uc.events == nil {
		return
	}
	err := uc.events.Publish(ctx, domain.EntryEvent{
		Type:    eventType,
		EntryID: entryID,
		UserID:  userID,
		At:      uc.opts.Calendar.Now(),
	})
	if err != nil {
		slog.WarnContext(
			ctx, "failed to publish entry event",
			slog.String("error", err.Error()),
			slog.String("event", string(eventType)),
			slog.String("module", "entry"),
		)
	}
}

// syncMentions upserts every name of the given kind extracted from content and returns the
// persisted rows.
func syncMentions(ctx context.Context, tx Store, userID string, kind domain.MentionKind, content string) ([]domain.Mention, error) {
	extractor := mention.For(kind)
	names := extractor.Extract(content)
	if len(names) == 0 {
		return []domain.Mention{}, nil
	}

	mentions, err := repoFor(tx, extractor.Kind()).Upsert(ctx, userID, names)
	if err != nil {
		return nil, err
	}
	metrics.AddMentionsSynced(string(extractor.Kind()), len(mentions))
	return mentions, nil
}

func journalMetadata(validated map[string]any, tagNames []string) map[string]any {
	merged := map[string]any{
		"category": domain.DefaultJournalCategory,
		"mood":     0,
	}
	maps.Copy(merged, validated)
	merged["tags"] = tagNames
	return merged
}

func mentionIDs(mentions []domain.Mention) []string {
	ids := make([]string, 0, len(mentions))
	for _, m := range mentions {
		ids = append(ids, m.ID)
	}
	return ids
}

func mentionNames(mentions []domain.Mention) []string {
	names := make([]string, 0, len(mentions))
	for _, m := range mentions {
		names = append(names, m.Name)
	}
	return names
}

// boundaryError passes structured errors through and hides everything else behind message.
func boundaryError(err error, message string) error {
	if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInternal) {
		return err
	}
	return domain.InternalError{Message: message, Cause: err}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
