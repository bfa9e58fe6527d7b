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

func createTestChapter(t *testing.T, books *repo.BookRepo, chapters *repo.ChapterRepo, slug string) *model.Chapter {
	t.Helper()
	book := createTestBook(t, books, slug)
	now := time.Now().UnixMilli()
	ch := &model.Chapter{
		BookID: book.ID, Title: "Chapter", ChapterNumber: 1,
		Status: model.ChapterStatusDraft, ParagraphStyle: "auto_detect",
		KeyTerms: "[]", Ctime: now, Mtime: now,
	}
	require.NoError(t, chapters.Create(context.Background(), ch))
	return ch
}

func TestMediaRepoPositions(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	books := repo.NewBookRepo(db)
	chapters := repo.NewChapterRepo(db)
	media := repo.NewMediaRepo(db)
	ch := createTestChapter(t, books, chapters, "media-pos-"+t.Name())

	position, err := media.NextPosition(context.Background(), ch.ID)
	require.NoError(t, err)
	require.Equal(t, 1, position)

	// an image then an audio: positions are chapter-wide, never per type
	now := time.Now().UnixMilli()
	var ids []int64
	for i, mediaType := range []string{model.MediaTypeImage, model.MediaTypeAudio, model.MediaTypeImage} {
		position, err = media.NextPosition(context.Background(), ch.ID)
		require.NoError(t, err)
		require.Equal(t, i+1, position)
		m := &model.ChapterMedia{
			ChapterID: ch.ID, MediaType: mediaType,
			FileKey: "media/key", Position: position, Ctime: now, Mtime: now,
		}
		require.NoError(t, media.Create(context.Background(), m))
		ids = append(ids, m.ID)
	}

	position, err = media.NextPosition(context.Background(), ch.ID)
	require.NoError(t, err)
	require.Equal(t, 4, position)

	// per-type counts feed file naming only
	images, err := media.CountByType(context.Background(), ch.ID, model.MediaTypeImage)
	require.NoError(t, err)
	require.Equal(t, 2, images)
	audios, err := media.CountByType(context.Background(), ch.ID, model.MediaTypeAudio)
	require.NoError(t, err)
	require.Equal(t, 1, audios)

	// reverse the order
	require.NoError(t, media.UpdatePositions(context.Background(), ch.ID, []int64{ids[2], ids[1], ids[0]}, time.Now().UnixMilli()))
	list, err := media.ListByChapter(context.Background(), ch.ID, "")
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, ids[2], list[0].ID)
	require.Equal(t, ids[0], list[2].ID)
}

func TestMediaRepoCascadeOnChapterDelete(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	books := repo.NewBookRepo(db)
	chapters := repo.NewChapterRepo(db)
	media := repo.NewMediaRepo(db)
	ch := createTestChapter(t, books, chapters, "media-cascade-"+t.Name())

	now := time.Now().UnixMilli()
	m := &model.ChapterMedia{
		ChapterID: ch.ID, MediaType: model.MediaTypeAudio,
		FileKey: "audio/key", Position: 1, Ctime: now, Mtime: now,
	}
	require.NoError(t, media.Create(context.Background(), m))

	require.NoError(t, chapters.Delete(context.Background(), ch.BookID, ch.ID))
	_, err := media.GetByID(context.Background(), m.ID)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}
