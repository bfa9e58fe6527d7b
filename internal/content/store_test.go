package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/webnovel/internal/filestore"
	appErr "github.com/xxxsen/webnovel/internal/pkg/errors"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	return NewStore(filestore.NewLocal(dir)), dir
}

func TestContentKey(t *testing.T) {
	if got := ContentKey(3, 14); got != "content/chapters/book_3/chapter_14.json" {
		t.Errorf("ContentKey() = %q", got)
	}
	// same input, same key
	if ContentKey(3, 14) != ContentKey(3, 14) {
		t.Error("ContentKey must be deterministic")
	}
}

func TestMediaKeys(t *testing.T) {
	if got := MediaKey("audio", 1, 2, 3, "mp3"); got != "audio/book_1/chapter_2/audio_3.mp3" {
		t.Errorf("MediaKey() = %q", got)
	}
	if got := MediaKey("image", 1, 2, 3, ".png"); got != "image/book_1/chapter_2/image_3.png" {
		t.Errorf("MediaKey() = %q", got)
	}
	if got := LegacyImageKey(1, 2, 5, "jpg"); got != "images/book_1/chapter_2/image_5.jpg" {
		t.Errorf("LegacyImageKey() = %q", got)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	elements := []Element{
		Paragraph("A"),
		Media(KindImage, 1, "pic"),
		Paragraph("B"),
	}
	require.NoError(t, store.Save(ctx, 10, 20, elements))
	loaded, err := store.Load(ctx, 10, 20)
	require.NoError(t, err)
	require.Equal(t, elements, loaded)
}

func TestStoreLoadMissingIsNotFound(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Load(context.Background(), 1, 1)
	require.True(t, appErr.IsNotFound(err), "want not-found, got %v", err)
	require.False(t, appErr.IsStorage(err))
}

func TestStoreLoadMalformedIsStorageError(t *testing.T) {
	store, dir := newTestStore(t)
	path := filepath.Join(dir, "content", "chapters", "book_1", "chapter_2.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := store.Load(context.Background(), 1, 2)
	require.True(t, appErr.IsStorage(err), "want storage error, got %v", err)
	require.False(t, appErr.IsNotFound(err))
}

func TestStoreSaveEmptySequence(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, 1, 1, nil))
	loaded, err := store.Load(ctx, 1, 1)
	require.NoError(t, err)
	require.Empty(t, loaded)
}

func TestStoreSaveOverwrites(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, 1, 1, []Element{Paragraph("old")}))
	require.NoError(t, store.Save(ctx, 1, 1, []Element{Paragraph("new")}))
	loaded, err := store.Load(ctx, 1, 1)
	require.NoError(t, err)
	require.Equal(t, []Element{Paragraph("new")}, loaded)
}

func TestStoreSaveRejectsInvalidElement(t *testing.T) {
	store, _ := newTestStore(t)
	bad := Element{Kind: KindImage} // no reference at all
	err := store.Save(context.Background(), 1, 1, []Element{bad})
	require.Error(t, err)
	_, err = store.Load(context.Background(), 1, 1)
	require.True(t, appErr.IsNotFound(err), "failed save must not leave a file behind")
}

func TestStoreDeleteTolerant(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Delete(ctx, 1, 1))
	require.NoError(t, store.Save(ctx, 1, 1, []Element{Paragraph("x")}))
	require.NoError(t, store.Delete(ctx, 1, 1))
	_, err := store.Load(ctx, 1, 1)
	require.True(t, appErr.IsNotFound(err))
}
