package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/totegamma/daybook/internal/domain"
	"github.com/totegamma/daybook/internal/infrastructure/database/models"
)

type EntryRepository struct {
	db *gorm.DB
}

func NewEntryRepository(db *gorm.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

func (r *EntryRepository) Create(ctx context.Context, entry domain.NewEntry) error {
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return err
	}

	row := models.Entry{
		ID:         entry.ID,
		UserID:     entry.UserID,
		Type:       string(entry.Type),
		Title:      entry.Title,
		Content:    entry.Content,
		IsStarred:  entry.IsStarred,
		EditorMode: entry.EditorMode,
		Metadata:   datatypes.JSON(metadata),
		CreatedAt:  entry.CreatedAt.UTC(),
	}

	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(&row).Error; err != nil {
		return err
	}

	if err := linkTags(db, entry.ID, entry.TagIDs); err != nil {
		return err
	}
	return linkPeople(db, entry.ID, entry.PersonIDs)
}

func (r *EntryRepository) Get(ctx context.Context, userID, id string) (domain.Entry, error) {
	var row models.Entry
	err := withRelations(r.db.WithContext(ctx)).
		Where("id = ? AND user_id = ?", id, userID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Entry{}, domain.NotFoundError{Resource: "entry"}
		}
		return domain.Entry{}, err
	}
	return toDomainEntry(row)
}

// FindJournal returns the earliest live journal created within [from, to).
func (r *EntryRepository) FindJournal(ctx context.Context, userID string, from, to time.Time) (domain.Entry, bool, error) {
	var row models.Entry
	err := withRelations(r.db.WithContext(ctx)).
		Where("user_id = ? AND type = ?", userID, string(domain.EntryTypeJournal)).
		Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC()).
		Order("created_at ASC").
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Entry{}, false, nil
		}
		return domain.Entry{}, false, err
	}

	entry, err := toDomainEntry(row)
	if err != nil {
		return domain.Entry{}, false, err
	}
	return entry, true, nil
}

// Update applies the patch. Non-nil relation slices replace the relation set entirely.
func (r *EntryRepository) Update(ctx context.Context, userID, id string, patch domain.EntryPatch) error {
	db := r.db.WithContext(ctx)

	updates := map[string]any{}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Content != nil {
		updates["content"] = *patch.Content
	}
	if patch.IsStarred != nil {
		updates["is_starred"] = *patch.IsStarred
	}
	if patch.Metadata != nil {
		metadata, err := json.Marshal(patch.Metadata)
		if err != nil {
			return err
		}
		updates["metadata"] = datatypes.JSON(metadata)
	}
	updates["updated_at"] = time.Now().UTC()

	result := db.Model(&models.Entry{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "entry"}
	}

	if patch.TagIDs != nil {
		if err := db.Where("entry_id = ?", id).Delete(&models.EntryTag{}).Error; err != nil {
			return err
		}
		if err := linkTags(db, id, patch.TagIDs); err != nil {
			return err
		}
	}

	if patch.PersonIDs != nil {
		if err := db.Where("entry_id = ?", id).Delete(&models.EntryPerson{}).Error; err != nil {
			return err
		}
		if err := linkPeople(db, id, patch.PersonIDs); err != nil {
			return err
		}
	}

	return nil
}

func (r *EntryRepository) SoftDelete(ctx context.Context, userID, id string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Entry{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("deleted_at", at.UTC())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "entry"}
	}
	return nil
}

// List returns up to filter.Limit live entries ordered by created_at, id descending. The cursor
// entry itself is the first row returned.
func (r *EntryRepository) List(ctx context.Context, filter domain.EntryFilter) ([]domain.Entry, error) {
	db := r.db.WithContext(ctx)

	query := withRelations(db).Where("entries.user_id = ?", filter.UserID)

	if filter.Type != nil {
		query = query.Where("entries.type = ?", string(*filter.Type))
	}
	if filter.IsStarred != nil {
		query = query.Where("entries.is_starred = ?", *filter.IsStarred)
	}
	if filter.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(filter.Search)) + "%"
		query = query.Where(
			"(LOWER(entries.title) LIKE ? ESCAPE '\\' OR LOWER(entries.content) LIKE ? ESCAPE '\\')",
			pattern, pattern,
		)
	}
	if len(filter.TagIDs) > 0 {
		query = query.Where("entries.id IN (?)",
			r.db.Model(&models.EntryTag{}).Select("entry_id").Where("tag_id IN ?", filter.TagIDs))
	}
	if len(filter.PersonIDs) > 0 {
		query = query.Where("entries.id IN (?)",
			r.db.Model(&models.EntryPerson{}).Select("entry_id").Where("person_id IN ?", filter.PersonIDs))
	}
	if filter.DateFrom != nil {
		query = query.Where("entries.created_at >= ?", filter.DateFrom.UTC())
	}
	if filter.DateTo != nil {
		query = query.Where("entries.created_at <= ?", filter.DateTo.UTC())
	}

	if filter.Cursor != "" {
		var anchor models.Entry
		err := db.Unscoped().
			Select("id", "created_at").
			Where("id = ? AND user_id = ?", filter.Cursor, filter.UserID).
			Take(&anchor).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return []domain.Entry{}, nil
			}
			return nil, err
		}
		query = query.Where(
			"(entries.created_at < ? OR (entries.created_at = ? AND entries.id <= ?))",
			anchor.CreatedAt, anchor.CreatedAt, anchor.ID,
		)
	}

	var rows []models.Entry
	err := query.
		Order("entries.created_at DESC").
		Order("entries.id DESC").
		Limit(filter.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]domain.Entry, 0, len(rows))
	for _, row := range rows {
		entry, err := toDomainEntry(row)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Preload("People", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Preload("Attachments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") })
}

func linkTags(db *gorm.DB, entryID string, tagIDs []string) error {
	if len(tagIDs) == 0 {
		return nil
	}
	rows := make([]models.EntryTag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		rows = append(rows, models.EntryTag{EntryID: entryID, TagID: tagID})
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func linkPeople(db *gorm.DB, entryID string, personIDs []string) error {
	if len(personIDs) == 0 {
		return nil
	}
	rows := make([]models.EntryPerson, 0, len(personIDs))
	for _, personID := range personIDs {
		rows = append(rows, models.EntryPerson{EntryID: entryID, PersonID: personID})
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}

func toDomainEntry(row models.Entry) (domain.Entry, error) {
	metadata := map[string]any{}
	if len(row.Metadata) > 0 {
		if err := json.Unmarshal(row.Metadata, &metadata); err != nil {
			return domain.Entry{}, err
		}
		if metadata == nil {
			metadata = map[string]any{}
		}
	}

	tags := make([]domain.Tag, 0, len(row.Tags))
	for _, t := range row.Tags {
		tags = append(tags, tagToMention(t).Tag())
	}

	people := make([]domain.Person, 0, len(row.People))
	for _, p := range row.People {
		people = append(people, personToMention(p).Person())
	}

	attachments := make([]domain.AttachmentSummary, 0, len(row.Attachments))
	for _, a := range row.Attachments {
		attachments = append(attachments, domain.AttachmentSummary{
			ID:          a.ID,
			FileName:    a.FileName,
			ContentType: a.ContentType,
			Size:        a.Size,
			URL:         a.URL,
		})
	}

	entry := domain.Entry{
		ID:          row.ID,
		UserID:      row.UserID,
		Type:        domain.EntryType(row.Type),
		Title:       row.Title,
		Content:     row.Content,
		IsStarred:   row.IsStarred,
		EditorMode:  row.EditorMode,
		Metadata:    metadata,
		Tags:        tags,
		People:      people,
		Attachments: attachments,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
	if row.DeletedAt.Valid {
		deletedAt := row.DeletedAt.Time.UTC()
		entry.DeletedAt = &deletedAt
	}
	return entry, nil
}
