package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/webnovel/internal/model"
	appErr "github.com/xxxsen/webnovel/internal/pkg/errors"
	"github.com/xxxsen/webnovel/internal/repo"
	"github.com/xxxsen/webnovel/test/testutil"
)

func TestBookRepoCRUD(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	books := repo.NewBookRepo(db)
	now := time.Now().UnixMilli()
	slug := "crud-book-" + t.Name()
	book := &model.Book{
		OwnerID: "owner-1",
		Title:   "CRUD Book",
		Slug:    slug,
		Status:  model.BookStatusDraft,
		Ctime:   now,
		Mtime:   now,
	}
	require.NoError(t, books.Create(context.Background(), book))
	require.NotZero(t, book.ID)
	defer books.Delete(context.Background(), "owner-1", book.ID)

	fetched, err := books.GetByID(context.Background(), book.ID)
	require.NoError(t, err)
	require.Equal(t, "CRUD Book", fetched.Title)

	bySlug, err := books.GetBySlug(context.Background(), slug)
	require.NoError(t, err)
	require.Equal(t, book.ID, bySlug.ID)

	exists, err := books.SlugExists(context.Background(), slug)
	require.NoError(t, err)
	require.True(t, exists)

	book.Title = "Renamed"
	book.Status = model.BookStatusPublished
	book.Mtime = time.Now().UnixMilli()
	require.NoError(t, books.Update(context.Background(), book))

	require.NoError(t, books.UpdateStats(context.Background(), book.ID, 3, 1500, 9000, time.Now().UnixMilli()))
	fetched, err = books.GetByID(context.Background(), book.ID)
	require.NoError(t, err)
	require.Equal(t, 3, fetched.TotalChapters)
	require.Equal(t, 1500, fetched.TotalWords)

	require.NoError(t, books.Delete(context.Background(), "owner-1", book.ID))
	_, err = books.GetByID(context.Background(), book.ID)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestBookRepoSlugConflict(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	books := repo.NewBookRepo(db)
	now := time.Now().UnixMilli()
	slug := "conflict-book-" + t.Name()
	first := &model.Book{OwnerID: "owner-1", Title: "A", Slug: slug, Status: model.BookStatusDraft, Ctime: now, Mtime: now}
	require.NoError(t, books.Create(context.Background(), first))
	defer books.Delete(context.Background(), "owner-1", first.ID)

	dup := &model.Book{OwnerID: "owner-2", Title: "B", Slug: slug, Status: model.BookStatusDraft, Ctime: now, Mtime: now}
	err := books.Create(context.Background(), dup)
	require.ErrorIs(t, err, appErr.ErrConflict)
}

func TestBookRepoDeleteWrongOwner(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	books := repo.NewBookRepo(db)
	now := time.Now().UnixMilli()
	book := &model.Book{OwnerID: "owner-1", Title: "Mine", Slug: "owner-book-" + t.Name(), Status: model.BookStatusDraft, Ctime: now, Mtime: now}
	require.NoError(t, books.Create(context.Background(), book))
	defer books.Delete(context.Background(), "owner-1", book.ID)

	err := books.Delete(context.Background(), "owner-2", book.ID)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}
