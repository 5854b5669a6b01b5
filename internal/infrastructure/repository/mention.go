package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/totegamma/daybook/internal/domain"
	"github.com/totegamma/daybook/internal/infrastructure/database/models"
)

type mentionRow interface {
	models.Tag | models.Person
}

// MentionRepository persists one vocabulary kind. Names are unique per user, so Upsert relies on
// the (user_id, name) index instead of a read-then-insert.
type MentionRepository[T mentionRow] struct {
	db         *gorm.DB
	resource   string
	joinModel  any
	joinColumn string
	newRow     func(id, userID, name string) T
	toMention  func(row T) domain.Mention
}

func newTagRepository(db *gorm.DB) *MentionRepository[models.Tag] {
	return &MentionRepository[models.Tag]{
		db:         db,
		resource:   "tag",
		joinModel:  &models.EntryTag{},
		joinColumn: "tag_id",
		newRow: func(id, userID, name string) models.Tag {
			return models.Tag{ID: id, UserID: userID, Name: name}
		},
		toMention: tagToMention,
	}
}

func newPersonRepository(db *gorm.DB) *MentionRepository[models.Person] {
	return &MentionRepository[models.Person]{
		db:         db,
		resource:   "person",
		joinModel:  &models.EntryPerson{},
		joinColumn: "person_id",
		newRow: func(id, userID, name string) models.Person {
			return models.Person{ID: id, UserID: userID, Name: name}
		},
		toMention: personToMention,
	}
}

func (r *MentionRepository[T]) Upsert(ctx context.Context, userID string, names []string) ([]domain.Mention, error) {
	if len(names) == 0 {
		return []domain.Mention{}, nil
	}

	db := r.db.WithContext(ctx)

	rows := make([]T, 0, len(names))
	for _, name := range names {
		rows = append(rows, r.newRow(uuid.NewString(), userID, name))
	}

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "name"}},
		DoNothing: true,
	}).Create(&rows).Error
	if err != nil {
		return nil, err
	}

	var persisted []T
	err = db.Where("user_id = ? AND name IN ?", userID, names).
		Order("name ASC").
		Find(&persisted).Error
	if err != nil {
		return nil, err
	}

	return r.convert(persisted), nil
}

func (r *MentionRepository[T]) List(ctx context.Context, userID string) ([]domain.Mention, error) {
	var rows []T
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return r.convert(rows), nil
}

func (r *MentionRepository[T]) Update(ctx context.Context, userID, id string, patch domain.MentionPatch) (domain.Mention, error) {
	db := r.db.WithContext(ctx)

	updates := map[string]any{}
	if patch.Color != nil {
		updates["color"] = *patch.Color
	}
	if patch.Group != nil {
		updates["group_name"] = *patch.Group
	}

	if len(updates) > 0 {
		err := db.Model(new(T)).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(updates).Error
		if err != nil {
			return domain.Mention{}, err
		}
	}

	var row T
	err := db.Where("id = ? AND user_id = ?", id, userID).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Mention{}, domain.NotFoundError{Resource: r.resource}
		}
		return domain.Mention{}, err
	}
	return r.toMention(row), nil
}

// Delete removes the row and its entry links. Links go first so the join table foreign keys hold.
func (r *MentionRepository[T]) Delete(ctx context.Context, userID, id string) error {
	db := r.db.WithContext(ctx)

	owned := r.db.Model(new(T)).Select("id").Where("id = ? AND user_id = ?", id, userID)
	err := db.Where(r.joinColumn+" IN (?)", owned).Delete(r.joinModel).Error
	if err != nil {
		return err
	}

	result := db.Where("id = ? AND user_id = ?", id, userID).Delete(new(T))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: r.resource}
	}
	return nil
}

func (r *MentionRepository[T]) convert(rows []T) []domain.Mention {
	mentions := make([]domain.Mention, 0, len(rows))
	for _, row := range rows {
		mentions = append(mentions, r.toMention(row))
	}
	return mentions
}

func tagToMention(t models.Tag) domain.Mention {
	return domain.Mention{
		ID:        t.ID,
		UserID:    t.UserID,
		Name:      t.Name,
		Color:     t.Color,
		Group:     t.Group,
		CreatedAt: t.CreatedAt.UTC(),
	}
}

func personToMention(p models.Person) domain.Mention {
	return domain.Mention{
		ID:        p.ID,
		UserID:    p.UserID,
		Name:      p.Name,
		Group:     p.Group,
		CreatedAt: p.CreatedAt.UTC(),
	}
}
