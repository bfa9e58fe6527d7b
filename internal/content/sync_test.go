package content

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/webnovel/internal/model"
)

func mediaAttachment(id int64, mediaType string, position int, caption string) model.ChapterMedia {
	return model.ChapterMedia{ID: id, ChapterID: 1, MediaType: mediaType, Position: position, Caption: caption}
}

func TestSyncAppendsMissing(t *testing.T) {
	ctx := context.Background()
	acc, store := newTestAccessor(t, ChapterRef{BookID: 1, ChapterID: 1})
	require.NoError(t, store.Save(ctx, 1, 1, []Element{
		Paragraph("A"),
		Media(KindImage, 1, "already here"),
	}))
	sync := NewSynchronizer(acc)

	attachments := []model.ChapterMedia{
		mediaAttachment(1, model.MediaTypeImage, 1, "already here"),
		mediaAttachment(2, model.MediaTypeAudio, 2, "narration"),
		mediaAttachment(3, model.MediaTypeImage, 3, "late"),
	}
	appended, err := sync.Sync(ctx, attachments)
	require.NoError(t, err)
	require.Equal(t, 2, appended)

	elements, err := acc.Elements(ctx)
	require.NoError(t, err)
	require.Len(t, elements, 4)
	require.Equal(t, KindAudio, elements[2].Kind)
	require.Equal(t, KindImage, elements[3].Kind)
}

func TestSyncIdempotent(t *testing.T) {
	ctx := context.Background()
	acc, _ := newTestAccessor(t, ChapterRef{BookID: 1, ChapterID: 1})
	sync := NewSynchronizer(acc)
	attachments := []model.ChapterMedia{
		mediaAttachment(1, model.MediaTypeImage, 1, ""),
		mediaAttachment(2, model.MediaTypeVideo, 2, ""),
	}

	appended, err := sync.Sync(ctx, attachments)
	require.NoError(t, err)
	require.Equal(t, 2, appended)

	appended, err = sync.Sync(ctx, attachments)
	require.NoError(t, err)
	require.Equal(t, 0, appended, "second sync with no new attachments must append nothing")
}

func TestSyncMatchesLegacyImageRefs(t *testing.T) {
	ctx := context.Background()
	acc, store := newTestAccessor(t, ChapterRef{BookID: 1, ChapterID: 1})
	require.NoError(t, store.Save(ctx, 1, 1, []Element{LegacyImage(5, "old scheme")}))
	sync := NewSynchronizer(acc)

	appended, err := sync.Sync(ctx, []model.ChapterMedia{mediaAttachment(5, model.MediaTypeImage, 1, "old scheme")})
	require.NoError(t, err)
	require.Equal(t, 0, appended, "legacy image_id reference must count as present")
}

func TestRebuildReplacesMediaKeepsText(t *testing.T) {
	ctx := context.Background()
	acc, store := newTestAccessor(t, ChapterRef{BookID: 1, ChapterID: 1})
	require.NoError(t, store.Save(ctx, 1, 1, []Element{
		Media(KindImage, 99, "orphaned"), // attachment no longer exists
		Paragraph("A"),
		Paragraph("B"),
	}))
	sync := NewSynchronizer(acc)

	attachments := []model.ChapterMedia{
		mediaAttachment(1, model.MediaTypeImage, 2, "before second paragraph"),
		mediaAttachment(2, model.MediaTypeAudio, 5, "past the end"),
	}
	length, err := sync.Rebuild(ctx, attachments)
	require.NoError(t, err)
	require.Equal(t, 4, length)

	elements, err := acc.Elements(ctx)
	require.NoError(t, err)
	require.Equal(t, "A", elements[0].Content)
	require.Equal(t, KindImage, elements[1].Kind)
	require.Equal(t, "B", elements[2].Content)
	require.Equal(t, KindAudio, elements[3].Kind)

	// the orphaned media element is gone
	for _, el := range elements {
		if ref, ok := el.Ref(); ok {
			require.NotEqual(t, int64(99), ref)
		}
	}
}

func TestRebuildDistributesMixedTypes(t *testing.T) {
	ctx := context.Background()
	acc, store := newTestAccessor(t, ChapterRef{BookID: 1, ChapterID: 1})
	require.NoError(t, store.Save(ctx, 1, 1, []Element{
		Paragraph("P1"),
		Paragraph("P2"),
	}))
	sync := NewSynchronizer(acc)

	// an image uploaded first and an audio uploaded second carry chapter-wide
	// positions 1 and 2, so they seat before the first and second paragraph
	attachments := []model.ChapterMedia{
		mediaAttachment(1, model.MediaTypeImage, 1, ""),
		mediaAttachment(2, model.MediaTypeAudio, 2, ""),
	}
	length, err := sync.Rebuild(ctx, attachments)
	require.NoError(t, err)
	require.Equal(t, 4, length)

	elements, err := acc.Elements(ctx)
	require.NoError(t, err)
	require.Equal(t, KindImage, elements[0].Kind)
	require.Equal(t, "P1", elements[1].Content)
	require.Equal(t, KindAudio, elements[2].Kind)
	require.Equal(t, "P2", elements[3].Content)
}

func TestRebuildPreservesTextOrder(t *testing.T) {
	ctx := context.Background()
	acc, store := newTestAccessor(t, ChapterRef{BookID: 1, ChapterID: 1})
	require.NoError(t, store.Save(ctx, 1, 1, []Element{
		Paragraph("first"),
		Media(KindVideo, 1, ""),
		Paragraph("second"),
		Paragraph("third"),
	}))
	sync := NewSynchronizer(acc)

	_, err := sync.Rebuild(ctx, nil)
	require.NoError(t, err)
	elements, err := acc.Elements(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second", "third"}, textContents(elements))
}

func TestInsertIndexBeforeParagraph(t *testing.T) {
	elements := []Element{
		Paragraph("1"),
		Media(KindImage, 1, ""),
		Paragraph("2"),
	}
	tests := []struct {
		position int
		want     int
	}{
		{0, 3},
		{1, 0},
		{2, 2},
		{3, 3},
		{10, 3},
	}
	for _, tt := range tests {
		if got := insertIndexBeforeParagraph(elements, tt.position); got != tt.want {
			t.Errorf("insertIndexBeforeParagraph(%d) = %d, want %d", tt.position, got, tt.want)
		}
	}
}
