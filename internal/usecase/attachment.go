package usecase

import (
	"context"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/totegamma/daybook/internal/domain"
)

type UploadAttachmentInput struct {
	EntryID     string
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// AttachmentUsecase stores attachment payloads in the blob store and their records next to the entry.
type AttachmentUsecase struct {
	store    Store
	blob     BlobStore
	calendar Calendar
}

func NewAttachmentUsecase(store Store, blob BlobStore, calendar Calendar) *AttachmentUsecase {
	return &AttachmentUsecase{store: store, blob: blob, calendar: calendar}
}

func (uc *AttachmentUsecase) Upload(ctx context.Context, userID string, input UploadAttachmentInput) (domain.Attachment, error) {
	ctx, span := tracer.Start(ctx, "Attachment.Usecase.Upload")
	defer span.End()

	if uc.blob == nil {
		return domain.Attachment{}, domain.InternalError{Message: "attachment storage is not configured"}
	}

	if _, err := uc.store.Entries().Get(ctx, userID, input.EntryID); err != nil {
		span.RecordError(err)
		return domain.Attachment{}, boundaryError(err, "failed to upload attachment")
	}

	id := uuid.NewString()
	key := path.Join("entries", input.EntryID, id+path.Ext(input.FileName))

	url, err := uc.blob.Put(ctx, key, input.Body, input.Size, input.ContentType)
	if err != nil {
		span.RecordError(err)
		return domain.Attachment{}, boundaryError(pkgerrors.Wrap(err, "put blob"), "failed to upload attachment")
	}

	attachment := domain.Attachment{
		ID:          id,
		EntryID:     input.EntryID,
		UserID:      userID,
		FileName:    input.FileName,
		ObjectKey:   key,
		ContentType: input.ContentType,
		Size:        input.Size,
		URL:         url,
		CreatedAt:   uc.calendar.Now(),
	}

	if err := uc.store.Attachments().Create(ctx, attachment); err != nil {
		span.RecordError(err)
		uc.removeBlob(ctx, key)
		return domain.Attachment{}, boundaryError(err, "failed to upload attachment")
	}

	return attachment, nil
}

func (uc *AttachmentUsecase) Delete(ctx context.Context, userID, id string) error {
	ctx, span := tracer.Start(ctx, "Attachment.Usecase.Delete")
	defer span.End()

	attachment, err := uc.store.Attachments().Get(ctx, userID, id)
	if err != nil {
		span.RecordError(err)
		return boundaryError(err, "failed to delete attachment")
	}

	if err := uc.store.Attachments().Delete(ctx, userID, id); err != nil {
		span.RecordError(err)
		return boundaryError(err, "failed to delete attachment")
	}

	uc.removeBlob(ctx, attachment.ObjectKey)
	return nil
}

func (uc *AttachmentUsecase) removeBlob(ctx context.Context, key string) {
	if uc.blob == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := uc.blob.Remove(ctx, key); err != nil {
		slog.WarnContext(
			ctx, "failed to remove blob",
			slog.String("error", err.Error()),
			slog.String("key", key),
			slog.String("module", "attachment"),
		)
	}
}
