package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/totegamma/daybook/internal/domain"
	"github.com/totegamma/daybook/internal/infrastructure/database/models"
)

type AttachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

func (r *AttachmentRepository) Create(ctx context.Context, attachment domain.Attachment) error {
	row := models.Attachment{
		ID:          attachment.ID,
		EntryID:     attachment.EntryID,
		UserID:      attachment.UserID,
		FileName:    attachment.FileName,
		ObjectKey:   attachment.ObjectKey,
		ContentType: attachment.ContentType,
		Size:        attachment.Size,
		URL:         attachment.URL,
		CreatedAt:   attachment.CreatedAt.UTC(),
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *AttachmentRepository) Get(ctx context.Context, userID, id string) (domain.Attachment, error) {
	var row models.Attachment
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Attachment{}, domain.NotFoundError{Resource: "attachment"}
		}
		return domain.Attachment{}, err
	}

	return domain.Attachment{
		ID:          row.ID,
		EntryID:     row.EntryID,
		UserID:      row.UserID,
		FileName:    row.FileName,
		ObjectKey:   row.ObjectKey,
		ContentType: row.ContentType,
		Size:        row.Size,
		URL:         row.URL,
		CreatedAt:   row.CreatedAt.UTC(),
	}, nil
}

func (r *AttachmentRepository) Delete(ctx context.Context, userID, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Attachment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "attachment"}
	}
	return nil
}
