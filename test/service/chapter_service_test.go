package service_test

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/webnovel/internal/content"
	"github.com/xxxsen/webnovel/internal/filestore"
	"github.com/xxxsen/webnovel/internal/model"
	"github.com/xxxsen/webnovel/internal/repo"
	"github.com/xxxsen/webnovel/internal/service"
	"github.com/xxxsen/webnovel/test/testutil"
)

type memUpload struct {
	*bytes.Reader
}

func (f *memUpload) Close() error { return nil }

func upload(data string) filestore.ReadSeekCloser {
	return &memUpload{Reader: bytes.NewReader([]byte(data))}
}

type testEnv struct {
	books    *service.BookService
	chapters *service.ChapterService
	media    *service.MediaService
	files    filestore.Store
}

func newTestEnv(t *testing.T, db *sql.DB) *testEnv {
	t.Helper()
	bookRepo := repo.NewBookRepo(db)
	chapterRepo := repo.NewChapterRepo(db)
	mediaRepo := repo.NewMediaRepo(db)
	files := filestore.NewLocal(t.TempDir())
	store := content.NewStore(files)
	chapters := service.NewChapterService(bookRepo, chapterRepo, mediaRepo, store, files)
	return &testEnv{
		books:    service.NewBookService(bookRepo, chapterRepo, mediaRepo, store, files),
		chapters: chapters,
		media:    service.NewMediaService(bookRepo, chapterRepo, mediaRepo, files, chapters, "https://novels.example.com"),
		files:    files,
	}
}

func TestChapterDeleteRemovesStoredFiles(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	env := newTestEnv(t, db)
	ctx := context.Background()

	book, err := env.books.Create(ctx, "owner-1", service.CreateBookArgs{Title: "cleanup " + t.Name()})
	require.NoError(t, err)
	chapter, err := env.chapters.Create(ctx, "owner-1", book.ID, service.CreateChapterArgs{
		Title:      "One",
		RawContent: "P1\n\nP2",
	})
	require.NoError(t, err)

	image, err := env.media.Upload(ctx, "owner-1", chapter.ID, upload("png bytes"), service.UploadArgs{
		Filename: "cover.png", Size: 9,
	})
	require.NoError(t, err)
	audio, err := env.media.Upload(ctx, "owner-1", chapter.ID, upload("mp3 bytes"), service.UploadArgs{
		Filename: "voice.mp3", Size: 9,
	})
	require.NoError(t, err)

	// positions are assigned chapter-wide across types
	require.Equal(t, 1, image.Position)
	require.Equal(t, 2, audio.Position)

	// both blobs and the content file exist before deletion
	for _, key := range []string{image.FileKey, audio.FileKey, content.ContentKey(book.ID, chapter.ID)} {
		r, err := env.files.Open(ctx, key)
		require.NoError(t, err, "key %s must exist", key)
		require.NoError(t, r.Close())
	}

	require.NoError(t, env.chapters.Delete(ctx, "owner-1", chapter.ID))

	for _, key := range []string{image.FileKey, audio.FileKey, content.ContentKey(book.ID, chapter.ID)} {
		_, err := env.files.Open(ctx, key)
		require.True(t, os.IsNotExist(err), "key %s must be gone after chapter delete", key)
	}
}

func TestBookDeleteRemovesStoredFiles(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	env := newTestEnv(t, db)
	ctx := context.Background()

	book, err := env.books.Create(ctx, "owner-1", service.CreateBookArgs{Title: "book cleanup " + t.Name()})
	require.NoError(t, err)
	chapter, err := env.chapters.Create(ctx, "owner-1", book.ID, service.CreateChapterArgs{
		Title:      "One",
		RawContent: "P1",
	})
	require.NoError(t, err)
	media, err := env.media.Upload(ctx, "owner-1", chapter.ID, upload("png bytes"), service.UploadArgs{
		Filename: "cover.png", Size: 9,
	})
	require.NoError(t, err)

	require.NoError(t, env.books.Delete(ctx, "owner-1", book.ID))

	_, err = env.files.Open(ctx, media.FileKey)
	require.True(t, os.IsNotExist(err), "media blob must be gone after book delete")
	_, err = env.files.Open(ctx, content.ContentKey(book.ID, chapter.ID))
	require.True(t, os.IsNotExist(err), "content file must be gone after book delete")
}

func TestUploadAppendsToContent(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	env := newTestEnv(t, db)
	ctx := context.Background()

	book, err := env.books.Create(ctx, "owner-1", service.CreateBookArgs{Title: "sync " + t.Name()})
	require.NoError(t, err)
	chapter, err := env.chapters.Create(ctx, "owner-1", book.ID, service.CreateChapterArgs{
		Title:      "One",
		RawContent: "P1\n\nP2",
	})
	require.NoError(t, err)

	image, err := env.media.Upload(ctx, "owner-1", chapter.ID, upload("png bytes"), service.UploadArgs{
		Filename: "cover.png", Size: 9, Caption: "cover",
	})
	require.NoError(t, err)

	cc, err := env.chapters.GetContent(ctx, chapter.ID)
	require.NoError(t, err)
	require.Len(t, cc.Elements, 3)
	last := cc.Elements[2]
	require.Equal(t, content.KindImage, last.Kind)
	ref, ok := last.Ref()
	require.True(t, ok)
	require.Equal(t, image.ID, ref)
	require.Equal(t, model.MediaTypeImage, image.MediaType)
}
