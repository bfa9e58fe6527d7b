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

func createTestBook(t *testing.T, books *repo.BookRepo, slug string) *model.Book {
	t.Helper()
	now := time.Now().UnixMilli()
	book := &model.Book{
		OwnerID: "owner-1",
		Title:   "Test Book",
		Slug:    slug,
		Status:  model.BookStatusDraft,
		Ctime:   now,
		Mtime:   now,
	}
	require.NoError(t, books.Create(context.Background(), book))
	t.Cleanup(func() {
		_ = books.Delete(context.Background(), "owner-1", book.ID)
	})
	return book
}

func TestChapterRepoNumbering(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	books := repo.NewBookRepo(db)
	chapters := repo.NewChapterRepo(db)
	book := createTestBook(t, books, "numbering-"+t.Name())

	number, err := chapters.NextChapterNumber(context.Background(), book.ID)
	require.NoError(t, err)
	require.Equal(t, 1, number)

	now := time.Now().UnixMilli()
	first := &model.Chapter{
		BookID: book.ID, Title: "One", ChapterNumber: 1,
		Status: model.ChapterStatusDraft, ParagraphStyle: "auto_detect",
		KeyTerms: "[]", Ctime: now, Mtime: now,
	}
	require.NoError(t, chapters.Create(context.Background(), first))

	number, err = chapters.NextChapterNumber(context.Background(), book.ID)
	require.NoError(t, err)
	require.Equal(t, 2, number)

	// duplicate number within the same book is rejected
	dup := &model.Chapter{
		BookID: book.ID, Title: "Dup", ChapterNumber: 1,
		Status: model.ChapterStatusDraft, ParagraphStyle: "auto_detect",
		KeyTerms: "[]", Ctime: now, Mtime: now,
	}
	require.ErrorIs(t, chapters.Create(context.Background(), dup), appErr.ErrConflict)
}

func TestChapterRepoScheduledQuery(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	books := repo.NewBookRepo(db)
	chapters := repo.NewChapterRepo(db)
	book := createTestBook(t, books, "scheduled-"+t.Name())

	now := time.Now().UnixMilli()
	past := now - 60_000
	future := now + 3_600_000
	due := &model.Chapter{
		BookID: book.ID, Title: "Due", ChapterNumber: 1,
		Status: model.ChapterStatusScheduled, ParagraphStyle: "auto_detect",
		KeyTerms: "[]", ActiveAt: &past, Ctime: now, Mtime: now,
	}
	notDue := &model.Chapter{
		BookID: book.ID, Title: "Not due", ChapterNumber: 2,
		Status: model.ChapterStatusScheduled, ParagraphStyle: "auto_detect",
		KeyTerms: "[]", ActiveAt: &future, Ctime: now, Mtime: now,
	}
	require.NoError(t, chapters.Create(context.Background(), due))
	require.NoError(t, chapters.Create(context.Background(), notDue))

	list, err := chapters.ListDueScheduled(context.Background(), now, 100)
	require.NoError(t, err)
	ids := make(map[int64]bool)
	for _, ch := range list {
		ids[ch.ID] = true
	}
	require.True(t, ids[due.ID])
	require.False(t, ids[notDue.ID])

	require.NoError(t, chapters.UpdateStatus(context.Background(), due.ID, model.ChapterStatusPublished, &past, time.Now().UnixMilli()))
	fetched, err := chapters.GetByID(context.Background(), due.ID)
	require.NoError(t, err)
	require.Equal(t, model.ChapterStatusPublished, fetched.Status)
}

func TestChapterRepoStats(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	books := repo.NewBookRepo(db)
	chapters := repo.NewChapterRepo(db)
	book := createTestBook(t, books, "stats-"+t.Name())

	now := time.Now().UnixMilli()
	for i, counts := range [][2]int{{100, 500}, {200, 900}} {
		ch := &model.Chapter{
			BookID: book.ID, Title: "Ch", ChapterNumber: i + 1,
			Status: model.ChapterStatusDraft, ParagraphStyle: "auto_detect",
			KeyTerms: "[]", WordCount: counts[0], CharCount: counts[1],
			Ctime: now, Mtime: now,
		}
		require.NoError(t, chapters.Create(context.Background(), ch))
	}

	count, words, chars, err := chapters.BookStats(context.Background(), book.ID)
	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.Equal(t, 300, words)
	require.Equal(t, 1400, chars)
}

func TestChapterRepoContentMeta(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	books := repo.NewBookRepo(db)
	chapters := repo.NewChapterRepo(db)
	book := createTestBook(t, books, "meta-"+t.Name())

	now := time.Now().UnixMilli()
	ch := &model.Chapter{
		BookID: book.ID, Title: "Meta", ChapterNumber: 1,
		Status: model.ChapterStatusDraft, ParagraphStyle: "auto_detect",
		KeyTerms: "[]", Ctime: now, Mtime: now,
	}
	require.NoError(t, chapters.Create(context.Background(), ch))

	require.NoError(t, chapters.UpdateContentMeta(context.Background(), ch.ID, "An excerpt.", 42, 250, time.Now().UnixMilli()))
	require.NoError(t, chapters.UpdateAbstract(context.Background(), ch.ID, "A summary.", time.Now().UnixMilli()))
	require.NoError(t, chapters.UpdateKeyTerms(context.Background(), ch.ID, `["hero","sword"]`, time.Now().UnixMilli()))

	fetched, err := chapters.GetByID(context.Background(), ch.ID)
	require.NoError(t, err)
	require.Equal(t, "An excerpt.", fetched.Excerpt)
	require.Equal(t, 42, fetched.WordCount)
	require.Equal(t, "A summary.", fetched.Abstract)
	require.Equal(t, `["hero","sword"]`, fetched.KeyTerms)
}
