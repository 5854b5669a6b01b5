package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/totegamma/daybook/internal/domain"
	"github.com/totegamma/daybook/internal/infrastructure/database"
	"github.com/totegamma/daybook/internal/infrastructure/database/models"
	"github.com/totegamma/daybook/internal/usecase"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.NewSQLite(filepath.Join(t.TempDir(), "daybook.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func strptr(s string) *string { return &s }

func TestMentionUpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newTestDB(t))

	first, err := store.Tags().Upsert(ctx, "alice", []string{"work", "home"})
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := store.Tags().Upsert(ctx, "alice", []string{"home", "work", "gym"})
	require.NoError(t, err)
	require.Len(t, second, 3)

	ids := map[string]string{}
	for _, m := range first {
		ids[m.Name] = m.ID
	}
	for _, m := range second {
		if id, ok := ids[m.Name]; ok {
			assert.Equal(t, id, m.ID, "existing tag %s should keep its id", m.Name)
		}
	}

	all, err := store.Tags().List(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	others, err := store.Tags().List(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestMentionUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newTestDB(t))

	tags, err := store.Tags().Upsert(ctx, "alice", []string{"work"})
	require.NoError(t, err)
	tag := tags[0]

	updated, err := store.Tags().Update(ctx, "alice", tag.ID, domain.MentionPatch{Color: strptr("#ff0000"), Group: strptr("life")})
	require.NoError(t, err)
	require.NotNil(t, updated.Color)
	assert.Equal(t, "#ff0000", *updated.Color)
	require.NotNil(t, updated.Group)
	assert.Equal(t, "life", *updated.Group)

	_, err = store.Tags().Update(ctx, "bob", tag.ID, domain.MentionPatch{Color: strptr("#000")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Entries().Create(ctx, domain.NewEntry{
		ID:        "e1",
		UserID:    "alice",
		Type:      domain.EntryTypeNote,
		Content:   strptr("#work"),
		Metadata:  map[string]any{},
		TagIDs:    []string{tag.ID},
		CreatedAt: time.Now(),
	}))

	require.NoError(t, store.Tags().Delete(ctx, "alice", tag.ID))
	assert.ErrorIs(t, store.Tags().Delete(ctx, "alice", tag.ID), domain.ErrNotFound)

	entry, err := store.Entries().Get(ctx, "alice", "e1")
	require.NoError(t, err)
	assert.Empty(t, entry.Tags)
}

func TestEntryRelationsReplace(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newTestDB(t))

	tags, err := store.Tags().Upsert(ctx, "alice", []string{"a", "b", "c"})
	require.NoError(t, err)
	people, err := store.People().Upsert(ctx, "alice", []string{"sam"})
	require.NoError(t, err)

	require.NoError(t, store.Entries().Create(ctx, domain.NewEntry{
		ID:        "e1",
		UserID:    "alice",
		Type:      domain.EntryTypeIdea,
		Metadata:  map[string]any{},
		TagIDs:    []string{tags[0].ID, tags[1].ID},
		PersonIDs: []string{people[0].ID},
		CreatedAt: time.Now(),
	}))

	err = store.Entries().Update(ctx, "alice", "e1", domain.EntryPatch{TagIDs: []string{tags[2].ID}})
	require.NoError(t, err)

	entry, err := store.Entries().Get(ctx, "alice", "e1")
	require.NoError(t, err)
	require.Len(t, entry.Tags, 1)
	assert.Equal(t, "c", entry.Tags[0].Name)
	require.Len(t, entry.People, 1, "people untouched when not patched")

	err = store.Entries().Update(ctx, "alice", "e1", domain.EntryPatch{PersonIDs: []string{}})
	require.NoError(t, err)

	entry, err = store.Entries().Get(ctx, "alice", "e1")
	require.NoError(t, err)
	assert.Empty(t, entry.People)
	assert.Len(t, entry.Tags, 1)
}

func TestEntrySoftDelete(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	store := NewStore(db)

	require.NoError(t, store.Entries().Create(ctx, domain.NewEntry{
		ID:        "e1",
		UserID:    "alice",
		Type:      domain.EntryTypeNote,
		Metadata:  map[string]any{},
		CreatedAt: time.Now(),
	}))

	require.NoError(t, store.Entries().SoftDelete(ctx, "alice", "e1", time.Now()))

	_, err := store.Entries().Get(ctx, "alice", "e1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, store.Entries().SoftDelete(ctx, "alice", "e1", time.Now()), domain.ErrNotFound)

	var row models.Entry
	require.NoError(t, db.Unscoped().Where("id = ?", "e1").Take(&row).Error)
	assert.True(t, row.DeletedAt.Valid)
}

func TestEntryListPagination(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newTestDB(t))

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		require.NoError(t, store.Entries().Create(ctx, domain.NewEntry{
			ID:        fmt.Sprintf("e%02d", i),
			UserID:    "alice",
			Type:      domain.EntryTypeNote,
			Metadata:  map[string]any{},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	seen := map[string]bool{}
	cursor := ""
	var sizes []int
	for {
		// one extra row to detect the next page, as the query engine does
		rows, err := store.Entries().List(ctx, domain.EntryFilter{UserID: "alice", Cursor: cursor, Limit: 11})
		require.NoError(t, err)

		page := rows
		cursor = ""
		if len(rows) == 11 {
			page = rows[:10]
			cursor = rows[10].ID
		}
		sizes = append(sizes, len(page))

		for i, e := range page {
			assert.False(t, seen[e.ID], "entry %s returned twice", e.ID)
			seen[e.ID] = true
			if i > 0 {
				assert.False(t, e.CreatedAt.After(page[i-1].CreatedAt))
			}
		}
		if cursor == "" {
			break
		}
	}

	assert.Equal(t, []int{10, 10, 5}, sizes)
	assert.Len(t, seen, 25)
}

func TestEntryListFilters(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newTestDB(t))

	tags, err := store.Tags().Upsert(ctx, "alice", []string{"work"})
	require.NoError(t, err)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Entries().Create(ctx, domain.NewEntry{
		ID: "a", UserID: "alice", Type: domain.EntryTypeNote, Title: strptr("Quarterly 100%"),
		Metadata: map[string]any{}, TagIDs: []string{tags[0].ID}, CreatedAt: base,
	}))
	require.NoError(t, store.Entries().Create(ctx, domain.NewEntry{
		ID: "b", UserID: "alice", Type: domain.EntryTypeIdea, Content: strptr("a new IDEA"), IsStarred: true,
		Metadata: map[string]any{}, CreatedAt: base.Add(time.Hour),
	}))

	ideaType := domain.EntryTypeIdea
	starred := true
	from := base.Add(30 * time.Minute)

	cases := []struct {
		name   string
		filter domain.EntryFilter
		want   []string
	}{
		{"all", domain.EntryFilter{}, []string{"b", "a"}},
		{"type", domain.EntryFilter{Type: &ideaType}, []string{"b"}},
		{"starred", domain.EntryFilter{IsStarred: &starred}, []string{"b"}},
		{"search is case insensitive", domain.EntryFilter{Search: "idea"}, []string{"b"}},
		{"search escapes wildcards", domain.EntryFilter{Search: "100%"}, []string{"a"}},
		{"tag", domain.EntryFilter{TagIDs: []string{tags[0].ID}}, []string{"a"}},
		{"date from", domain.EntryFilter{DateFrom: &from}, []string{"b"}},
		{"unknown cursor", domain.EntryFilter{Cursor: "missing"}, []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.filter.UserID = "alice"
			tc.filter.Limit = 10
			rows, err := store.Entries().List(ctx, tc.filter)
			require.NoError(t, err)
			got := make([]string, 0, len(rows))
			for _, r := range rows {
				got = append(got, r.ID)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestActivityIncrement(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newTestDB(t))

	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Activity().Increment(ctx, "alice", day, domain.EntryTypeJournal))
	require.NoError(t, store.Activity().Increment(ctx, "alice", day, domain.EntryTypeNote))
	require.NoError(t, store.Activity().Increment(ctx, "alice", day, domain.EntryTypeNote))
	require.NoError(t, store.Activity().Increment(ctx, "alice", day.AddDate(0, 0, 1), domain.EntryTypeIdea))

	logs, err := store.Activity().Range(ctx, "alice", day, day)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, 3, logs[0].EntryCount)
	assert.Equal(t, map[string]int{"journal": 1, "note": 2}, logs[0].EntryTypes)

	logs, err = store.Activity().Range(ctx, "alice", day, day.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestStreakLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newTestDB(t))

	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	active, err := store.Streaks().Active(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, active)

	longest, err := store.Streaks().Longest(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, longest)

	created, err := store.Streaks().Create(ctx, domain.Streak{ID: "s1", UserID: "alice", StartDate: day, EndDate: day, Length: 1})
	require.NoError(t, err)
	assert.True(t, created)
	require.NoError(t, store.Streaks().Extend(ctx, "s1", day.AddDate(0, 0, 1), 2))

	active, err = store.Streaks().Active(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, 2, active.Length)
	assert.True(t, active.EndDate.Equal(day.AddDate(0, 0, 1)))

	require.NoError(t, store.Streaks().Close(ctx, "s1"))
	created, err = store.Streaks().Create(ctx, domain.Streak{ID: "s2", UserID: "alice", StartDate: day.AddDate(0, 0, 5), EndDate: day.AddDate(0, 0, 5), Length: 1})
	require.NoError(t, err)
	assert.True(t, created)

	active, err = store.Streaks().Active(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "s2", active.ID)

	longest, err = store.Streaks().Longest(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, longest)
}

func TestStreakCreateSkipsSecondOpenStreak(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	store := NewStore(db)

	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	created, err := store.Streaks().Create(ctx, domain.Streak{ID: "s1", UserID: "alice", StartDate: day, EndDate: day, Length: 1})
	require.NoError(t, err)
	require.True(t, created)

	created, err = store.Streaks().Create(ctx, domain.Streak{ID: "s2", UserID: "alice", StartDate: day, EndDate: day, Length: 1})
	require.NoError(t, err)
	assert.False(t, created)

	created, err = store.Streaks().Create(ctx, domain.Streak{ID: "s3", UserID: "bob", StartDate: day, EndDate: day, Length: 1})
	require.NoError(t, err)
	assert.True(t, created)

	var n int64
	require.NoError(t, db.Model(&models.Streak{}).Where("user_id = ?", "alice").Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestTransactionHandsOutBoundedContext(t *testing.T) {
	store := NewStore(newTestDB(t))

	err := store.Transaction(context.Background(), time.Minute, func(ctx context.Context, tx usecase.Store) error {
		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
		return nil
	})
	require.NoError(t, err)

	err = store.Transaction(context.Background(), 0, func(ctx context.Context, tx usecase.Store) error {
		_, ok := ctx.Deadline()
		assert.False(t, ok)
		return nil
	})
	require.NoError(t, err)
}

func TestTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newTestDB(t))

	boom := errors.New("boom")
	err := store.Transaction(ctx, time.Second, func(ctx context.Context, tx usecase.Store) error {
		if _, err := tx.Tags().Upsert(ctx, "alice", []string{"lost"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	tags, err := store.Tags().List(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestAttachmentScopedToOwner(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newTestDB(t))

	require.NoError(t, store.Entries().Create(ctx, domain.NewEntry{
		ID: "e1", UserID: "alice", Type: domain.EntryTypeNote, Metadata: map[string]any{}, CreatedAt: time.Now(),
	}))
	require.NoError(t, store.Attachments().Create(ctx, domain.Attachment{
		ID: "a1", EntryID: "e1", UserID: "alice", FileName: "photo.png", ObjectKey: "entries/e1/a1.png",
		ContentType: "image/png", Size: 42, URL: "http://blob/daybook/entries/e1/a1.png", CreatedAt: time.Now(),
	}))

	_, err := store.Attachments().Get(ctx, "bob", "a1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	entry, err := store.Entries().Get(ctx, "alice", "e1")
	require.NoError(t, err)
	require.Len(t, entry.Attachments, 1)
	assert.Equal(t, "photo.png", entry.Attachments[0].FileName)

	require.NoError(t, store.Attachments().Delete(ctx, "alice", "a1"))
	assert.ErrorIs(t, store.Attachments().Delete(ctx, "alice", "a1"), domain.ErrNotFound)
}
