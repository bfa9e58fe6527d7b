package content

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/webnovel/internal/filestore"
	appErr "github.com/xxxsen/webnovel/internal/pkg/errors"
)

func newTestAccessor(t *testing.T, ref ChapterRef) (*Accessor, *Store) {
	t.Helper()
	store := NewStore(filestore.NewLocal(t.TempDir()))
	return NewAccessor(store, ref), store
}

func intPtr(i int) *int {
	return &i
}

func TestResolvePrefersStored(t *testing.T) {
	ctx := context.Background()
	acc, store := newTestAccessor(t, ChapterRef{BookID: 1, ChapterID: 1, RawContent: "legacy text", Style: StyleAutoDetect})
	require.NoError(t, store.Save(ctx, 1, 1, []Element{Paragraph("stored")}))

	elements, source, err := acc.Resolve(ctx)
	require.NoError(t, err)
	require.Equal(t, SourceStored, source)
	require.Equal(t, []Element{Paragraph("stored")}, elements)
}

func TestResolveFallsBackToParse(t *testing.T) {
	ctx := context.Background()
	acc, store := newTestAccessor(t, ChapterRef{BookID: 1, ChapterID: 1, RawContent: "A\n\nB\n\nC", Style: StyleAutoDetect})

	elements, source, err := acc.Resolve(ctx)
	require.NoError(t, err)
	require.Equal(t, SourceParsed, source)
	require.Equal(t, []string{"A", "B", "C"}, textContents(elements))

	// reads are side-effect free: nothing was persisted
	_, err = store.Load(ctx, 1, 1)
	require.True(t, appErr.IsNotFound(err))
}

func TestResolveEmpty(t *testing.T) {
	acc, _ := newTestAccessor(t, ChapterRef{BookID: 1, ChapterID: 1})
	elements, source, err := acc.Resolve(context.Background())
	require.NoError(t, err)
	require.Equal(t, SourceEmpty, source)
	require.Empty(t, elements)
}

func TestParagraphNumberingSkipsMedia(t *testing.T) {
	ctx := context.Background()
	acc, store := newTestAccessor(t, ChapterRef{BookID: 1, ChapterID: 1})
	require.NoError(t, store.Save(ctx, 1, 1, []Element{
		Paragraph("A"),
		Media(KindImage, 1, ""),
		Paragraph("B"),
	}))

	paragraphs, err := acc.Paragraphs(ctx)
	require.NoError(t, err)
	require.Len(t, paragraphs, 2)
	require.Equal(t, NumberedParagraph{Content: "A", ParagraphNumber: 1, Index: 0}, paragraphs[0])
	require.Equal(t, NumberedParagraph{Content: "B", ParagraphNumber: 2, Index: 2}, paragraphs[1])
}

func TestParagraphsFromParsedText(t *testing.T) {
	acc, _ := newTestAccessor(t, ChapterRef{BookID: 1, ChapterID: 1, RawContent: "A\n\nB\n\nC", Style: StyleDoubleNewline})
	paragraphs, err := acc.Paragraphs(context.Background())
	require.NoError(t, err)
	require.Len(t, paragraphs, 3)
	for i, p := range paragraphs {
		require.Equal(t, i+1, p.ParagraphNumber)
	}
}

func TestElementAtBounds(t *testing.T) {
	ctx := context.Background()
	acc, store := newTestAccessor(t, ChapterRef{BookID: 1, ChapterID: 1})
	require.NoError(t, store.Save(ctx, 1, 1, []Element{Paragraph("A"), Paragraph("B")}))

	el, err := acc.ElementAt(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "B", el.Content)

	for _, idx := range []int{-1, 2, 100} {
		_, err := acc.ElementAt(ctx, idx)
		require.ErrorIs(t, err, appErr.ErrIndexOutOfRange, "index %d", idx)
	}
}

func TestAddParagraphAppendAndInsert(t *testing.T) {
	ctx := context.Background()
	acc, _ := newTestAccessor(t, ChapterRef{BookID: 1, ChapterID: 1})

	require.NoError(t, acc.AddParagraph(ctx, "A", nil))
	require.NoError(t, acc.AddParagraph(ctx, "C", nil))
	require.NoError(t, acc.AddParagraph(ctx, "B", intPtr(1)))

	elements, err := acc.Elements(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B", "C"}, textContents(elements))
}

func TestFirstMutationPersistsParsedContent(t *testing.T) {
	ctx := context.Background()
	acc, store := newTestAccessor(t, ChapterRef{BookID: 1, ChapterID: 1, RawContent: "A\n\nB", Style: StyleDoubleNewline})

	require.NoError(t, acc.AddParagraph(ctx, "C", nil))

	stored, err := store.Load(ctx, 1, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B", "C"}, textContents(stored))
}

func TestAddImageAtPosition(t *testing.T) {
	ctx := context.Background()
	acc, _ := newTestAccessor(t, ChapterRef{BookID: 1, ChapterID: 1})
	require.NoError(t, acc.AddParagraph(ctx, "A", nil))
	require.NoError(t, acc.AddParagraph(ctx, "B", nil))
	require.NoError(t, acc.AddImage(ctx, 7, "x", intPtr(1)))

	elements, err := acc.Elements(ctx)
	require.NoError(t, err)
	require.Len(t, elements, 3)
	require.Equal(t, "A", elements[0].Content)
	ref, ok := elements[1].Ref()
	require.True(t, ok)
	require.Equal(t, int64(7), ref)
	require.Equal(t, KindImage, elements[1].Kind)
	require.Equal(t, "B", elements[2].Content)
}

func TestAddMediaKinds(t *testing.T) {
	ctx := context.Background()
	acc, _ := newTestAccessor(t, ChapterRef{BookID: 1, ChapterID: 1})
	require.NoError(t, acc.AddAudio(ctx, 1, "a", nil))
	require.NoError(t, acc.AddVideo(ctx, 2, "v", nil))
	require.NoError(t, acc.AddDocument(ctx, 3, "d", nil))
	require.NoError(t, acc.AddLegacyImage(ctx, 4, "i", nil))

	elements, err := acc.Elements(ctx)
	require.NoError(t, err)
	require.Equal(t, []Kind{KindAudio, KindVideo, KindDocument, KindImage},
		[]Kind{elements[0].Kind, elements[1].Kind, elements[2].Kind, elements[3].Kind})
	require.NotNil(t, elements[3].ImageID)
	require.Nil(t, elements[3].MediaID)
}

func TestUpdateParagraph(t *testing.T) {
	ctx := context.Background()
	acc, store := newTestAccessor(t, ChapterRef{BookID: 1, ChapterID: 1})
	require.NoError(t, store.Save(ctx, 1, 1, []Element{Paragraph("old"), Media(KindImage, 1, "")}))

	require.NoError(t, acc.UpdateParagraph(ctx, 0, "new"))
	el, err := acc.ElementAt(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, "new", el.Content)

	err = acc.UpdateParagraph(ctx, 1, "nope")
	require.ErrorIs(t, err, appErr.ErrTypeMismatch)
	err = acc.UpdateParagraph(ctx, 5, "nope")
	require.ErrorIs(t, err, appErr.ErrIndexOutOfRange)
}

func TestDeleteElementShiftsIndices(t *testing.T) {
	ctx := context.Background()
	acc, store := newTestAccessor(t, ChapterRef{BookID: 1, ChapterID: 1})
	require.NoError(t, store.Save(ctx, 1, 1, []Element{Paragraph("A"), Paragraph("B"), Paragraph("C")}))

	require.NoError(t, acc.DeleteElement(ctx, 1))
	el, err := acc.ElementAt(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "C", el.Content)

	// deleting the last element leaves the old index out of range
	require.NoError(t, acc.DeleteElement(ctx, 1))
	_, err = acc.ElementAt(ctx, 1)
	require.ErrorIs(t, err, appErr.ErrIndexOutOfRange)

	err = acc.DeleteElement(ctx, 10)
	require.ErrorIs(t, err, appErr.ErrIndexOutOfRange)
}

func TestReorder(t *testing.T) {
	ctx := context.Background()
	acc, store := newTestAccessor(t, ChapterRef{BookID: 1, ChapterID: 1})
	require.NoError(t, store.Save(ctx, 1, 1, []Element{Paragraph("A"), Paragraph("B"), Paragraph("C")}))

	require.NoError(t, acc.Reorder(ctx, []int{2, 0, 1}))
	elements, err := acc.Elements(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"C", "A", "B"}, textContents(elements))
}

func TestReorderRejectsNonPermutations(t *testing.T) {
	ctx := context.Background()
	acc, store := newTestAccessor(t, ChapterRef{BookID: 1, ChapterID: 1})
	before := []Element{Paragraph("A"), Paragraph("B"), Paragraph("C")}
	require.NoError(t, store.Save(ctx, 1, 1, before))

	tests := []struct {
		name  string
		order []int
	}{
		{"too short", []int{0, 1}},
		{"too long", []int{0, 1, 2, 3}},
		{"duplicate", []int{0, 0, 1}},
		{"out of range", []int{0, 1, 3}},
		{"negative", []int{0, 1, -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := acc.Reorder(ctx, tt.order)
			require.ErrorIs(t, err, appErr.ErrInvalidPermutation)
			stored, err := store.Load(ctx, 1, 1)
			require.NoError(t, err)
			require.Equal(t, before, stored, "rejected reorder must leave stored content unchanged")
		})
	}
}
