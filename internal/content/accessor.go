package content

import (
	"context"
	"fmt"

	appErr "github.com/xxxsen/webnovel/internal/pkg/errors"
)

// ChapterRef carries everything the accessor needs to know about a chapter:
// its storage identity plus the legacy raw text and parse policy used when no
// content file exists yet.
type ChapterRef struct {
	BookID     int64
	ChapterID  int64
	RawContent string
	Style      ParagraphStyle
}

// Source reports where a resolved element sequence came from.
type Source int

const (
	SourceEmpty Source = iota
	SourceStored
	SourceParsed
)

// Accessor is the chapter-facing API over ordered content. Reads are
// side-effect free: content parsed from legacy raw text is NOT persisted
// until the first mutating call. Every mutating call re-persists the whole
// sequence before returning; a sequence of calls is not atomic as a whole,
// and there is no locking at this layer (single writer per chapter is
// assumed; callers needing more wrap mutations in a per-chapter lock).
type Accessor struct {
	store *Store
	ref   ChapterRef
}

func NewAccessor(store *Store, ref ChapterRef) *Accessor {
	if ref.Style == "" {
		ref.Style = StyleAutoDetect
	}
	return &Accessor{store: store, ref: ref}
}

// Resolve loads the stored sequence, or falls back to parsing the legacy raw
// text, or yields an empty sequence. The fallback chain is resolved here,
// once, instead of at every call site.
func (a *Accessor) Resolve(ctx context.Context) ([]Element, Source, error) {
	elements, err := a.store.Load(ctx, a.ref.BookID, a.ref.ChapterID)
	if err == nil {
		return elements, SourceStored, nil
	}
	if !appErr.IsNotFound(err) {
		return nil, SourceEmpty, err
	}
	if a.ref.RawContent == "" {
		return []Element{}, SourceEmpty, nil
	}
	return Parse(a.ref.RawContent, a.ref.Style), SourceParsed, nil
}

func (a *Accessor) Elements(ctx context.Context) ([]Element, error) {
	elements, _, err := a.Resolve(ctx)
	return elements, err
}

// NumberedParagraph is a text element projected with its 1-based rank among text
// elements. Media elements do not consume a paragraph number.
type NumberedParagraph struct {
	Content         string `json:"content"`
	ParagraphNumber int    `json:"paragraph_number"`
	Index           int    `json:"index"`
}

func (a *Accessor) Paragraphs(ctx context.Context) ([]NumberedParagraph, error) {
	elements, err := a.Elements(ctx)
	if err != nil {
		return nil, err
	}
	return paragraphsOf(elements), nil
}

func paragraphsOf(elements []Element) []NumberedParagraph {
	paragraphs := make([]NumberedParagraph, 0, len(elements))
	number := 0
	for i, el := range elements {
		if !el.IsText() {
			continue
		}
		number++
		paragraphs = append(paragraphs, NumberedParagraph{
			Content:         el.Content,
			ParagraphNumber: number,
			Index:           i,
		})
	}
	return paragraphs
}

func (a *Accessor) ElementAt(ctx context.Context, index int) (Element, error) {
	elements, err := a.Elements(ctx)
	if err != nil {
		return Element{}, err
	}
	if index < 0 || index >= len(elements) {
		return Element{}, fmt.Errorf("%w: index %d, length %d", appErr.ErrIndexOutOfRange, index, len(elements))
	}
	return elements[index], nil
}

// AddParagraph inserts a text element. A nil position appends; otherwise the
// element is inserted before the element currently at *position, shifting
// later indices up. Previously fetched indices are invalidated.
func (a *Accessor) AddParagraph(ctx context.Context, content string, position *int) error {
	return a.insert(ctx, Paragraph(content), position)
}

func (a *Accessor) AddImage(ctx context.Context, mediaID int64, caption string, position *int) error {
	return a.insert(ctx, Media(KindImage, mediaID, caption), position)
}

// AddLegacyImage inserts an image element under the old image_id reference
// scheme.
func (a *Accessor) AddLegacyImage(ctx context.Context, imageID int64, caption string, position *int) error {
	return a.insert(ctx, LegacyImage(imageID, caption), position)
}

func (a *Accessor) AddAudio(ctx context.Context, mediaID int64, caption string, position *int) error {
	return a.insert(ctx, Media(KindAudio, mediaID, caption), position)
}

func (a *Accessor) AddVideo(ctx context.Context, mediaID int64, caption string, position *int) error {
	return a.insert(ctx, Media(KindVideo, mediaID, caption), position)
}

func (a *Accessor) AddDocument(ctx context.Context, mediaID int64, caption string, position *int) error {
	return a.insert(ctx, Media(KindDocument, mediaID, caption), position)
}

func (a *Accessor) insert(ctx context.Context, el Element, position *int) error {
	elements, _, err := a.Resolve(ctx)
	if err != nil {
		return err
	}
	if position == nil {
		elements = append(elements, el)
	} else {
		pos := *position
		if pos < 0 || pos > len(elements) {
			return fmt.Errorf("%w: position %d, length %d", appErr.ErrIndexOutOfRange, pos, len(elements))
		}
		elements = append(elements, Element{})
		copy(elements[pos+1:], elements[pos:])
		elements[pos] = el
	}
	return a.store.Save(ctx, a.ref.BookID, a.ref.ChapterID, elements)
}

// UpdateParagraph replaces the content of the text element at index. Fails
// with ErrTypeMismatch when the indexed element is not text; nothing is
// persisted on failure.
func (a *Accessor) UpdateParagraph(ctx context.Context, index int, content string) error {
	elements, _, err := a.Resolve(ctx)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(elements) {
		return fmt.Errorf("%w: index %d, length %d", appErr.ErrIndexOutOfRange, index, len(elements))
	}
	if !elements[index].IsText() {
		return fmt.Errorf("%w: element %d is %s, not paragraph", appErr.ErrTypeMismatch, index, elements[index].Kind)
	}
	elements[index].Content = content
	return a.store.Save(ctx, a.ref.BookID, a.ref.ChapterID, elements)
}

// DeleteElement removes the element at index, shifting later indices down.
func (a *Accessor) DeleteElement(ctx context.Context, index int) error {
	elements, _, err := a.Resolve(ctx)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(elements) {
		return fmt.Errorf("%w: index %d, length %d", appErr.ErrIndexOutOfRange, index, len(elements))
	}
	elements = append(elements[:index], elements[index+1:]...)
	return a.store.Save(ctx, a.ref.BookID, a.ref.ChapterID, elements)
}

// Reorder permutes the sequence. newOrder must be a bijection onto
// [0, len): duplicates, gaps, wrong length, and out-of-range indices are all
// rejected before anything is written, so a malformed request can never drop
// or duplicate elements.
func (a *Accessor) Reorder(ctx context.Context, newOrder []int) error {
	elements, _, err := a.Resolve(ctx)
	if err != nil {
		return err
	}
	if len(newOrder) != len(elements) {
		return fmt.Errorf("%w: got %d indices, content has %d elements", appErr.ErrInvalidPermutation, len(newOrder), len(elements))
	}
	seen := make([]bool, len(elements))
	for _, idx := range newOrder {
		if idx < 0 || idx >= len(elements) {
			return fmt.Errorf("%w: index %d out of range", appErr.ErrInvalidPermutation, idx)
		}
		if seen[idx] {
			return fmt.Errorf("%w: duplicate index %d", appErr.ErrInvalidPermutation, idx)
		}
		seen[idx] = true
	}
	reordered := make([]Element, len(elements))
	for target, source := range newOrder {
		reordered[target] = elements[source]
	}
	return a.store.Save(ctx, a.ref.BookID, a.ref.ChapterID, reordered)
}

// Save persists an explicit sequence, replacing whatever is stored.
func (a *Accessor) Save(ctx context.Context, elements []Element) error {
	return a.store.Save(ctx, a.ref.BookID, a.ref.ChapterID, elements)
}
