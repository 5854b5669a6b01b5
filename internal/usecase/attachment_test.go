package usecase_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/daybook/internal/domain"
	"github.com/totegamma/daybook/internal/usecase"
)

type memoryBlob struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut bool
}

func newMemoryBlob() *memoryBlob {
	return &memoryBlob{objects: map[string][]byte{}}
}

func (b *memoryBlob) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	if b.failPut {
		return "", errors.New("bucket unavailable")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	return "https://blobs.example.com/daybook/" + key, nil
}

func (b *memoryBlob) Remove(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	return nil
}

func TestAttachmentLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	blob := newMemoryBlob()
	attachments := usecase.NewAttachmentUsecase(f.store, blob, usecase.Calendar{Clock: f.clock.Now})

	entry, err := f.entries.Create(ctx, "alice", usecase.CreateEntryInput{Type: domain.EntryTypeIdea})
	require.NoError(t, err)

	payload := []byte("fake png")
	attachment, err := attachments.Upload(ctx, "alice", usecase.UploadAttachmentInput{
		EntryID:     entry.ID,
		FileName:    "sketch.png",
		ContentType: "image/png",
		Size:        int64(len(payload)),
		Body:        bytes.NewReader(payload),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(attachment.ObjectKey, ".png"))
	assert.Equal(t, payload, blob.objects[attachment.ObjectKey])
	assert.Contains(t, attachment.URL, attachment.ObjectKey)

	reloaded, err := f.entries.Get(ctx, "alice", entry.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Attachments, 1)
	assert.Equal(t, attachment.ID, reloaded.Attachments[0].ID)

	assert.ErrorIs(t, attachments.Delete(ctx, "bob", attachment.ID), domain.ErrNotFound)

	require.NoError(t, attachments.Delete(ctx, "alice", attachment.ID))
	assert.Empty(t, blob.objects)
}

func TestAttachmentUploadRequiresOwnedEntry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	attachments := usecase.NewAttachmentUsecase(f.store, newMemoryBlob(), usecase.Calendar{Clock: f.clock.Now})

	entry, err := f.entries.Create(ctx, "alice", usecase.CreateEntryInput{Type: domain.EntryTypeNote})
	require.NoError(t, err)

	_, err = attachments.Upload(ctx, "bob", usecase.UploadAttachmentInput{
		EntryID:  entry.ID,
		FileName: "a.txt",
		Body:     strings.NewReader("x"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAttachmentUploadFailures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	entry, err := f.entries.Create(ctx, "alice", usecase.CreateEntryInput{Type: domain.EntryTypeNote})
	require.NoError(t, err)

	input := usecase.UploadAttachmentInput{EntryID: entry.ID, FileName: "a.txt", Body: strings.NewReader("x")}

	unconfigured := usecase.NewAttachmentUsecase(f.store, nil, usecase.Calendar{Clock: f.clock.Now})
	_, err = unconfigured.Upload(ctx, "alice", input)
	assert.ErrorIs(t, err, domain.ErrInternal)

	broken := newMemoryBlob()
	broken.failPut = true
	_, err = usecase.NewAttachmentUsecase(f.store, broken, usecase.Calendar{Clock: f.clock.Now}).Upload(ctx, "alice", input)
	require.ErrorIs(t, err, domain.ErrInternal)
	assert.Equal(t, "failed to upload attachment", err.Error())
}
