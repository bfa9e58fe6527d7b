package content

import (
	"context"
	"sort"

	"github.com/xxxsen/webnovel/internal/model"
)

// Synchronizer keeps a chapter's media attachments and its element sequence
// consistent. Attachments are matched by reference id (either scheme), never
// by position.
type Synchronizer struct {
	acc *Accessor
}

func NewSynchronizer(acc *Accessor) *Synchronizer {
	return &Synchronizer{acc: acc}
}

// Sync appends a media element for every attachment that has no element in
// the current sequence yet, in attachment position order, and returns how
// many were appended. Idempotent: with no new attachments it appends nothing
// and writes nothing.
func (s *Synchronizer) Sync(ctx context.Context, attachments []model.ChapterMedia) (int, error) {
	elements, _, err := s.acc.Resolve(ctx)
	if err != nil {
		return 0, err
	}
	present := make(map[refKey]struct{})
	for _, el := range elements {
		if ref, ok := el.Ref(); ok {
			present[refKey{kind: el.Kind, id: ref}] = struct{}{}
		}
	}
	sorted := sortedByPosition(attachments)
	appended := 0
	for _, att := range sorted {
		key := refKey{kind: Kind(att.MediaType), id: att.ID}
		if _, ok := present[key]; ok {
			continue
		}
		elements = append(elements, Media(Kind(att.MediaType), att.ID, att.Caption))
		present[key] = struct{}{}
		appended++
	}
	if appended == 0 {
		return 0, nil
	}
	if err := s.acc.Save(ctx, elements); err != nil {
		return 0, err
	}
	return appended, nil
}

// Rebuild discards the current media elements and regenerates the sequence:
// text elements keep their relative order, and one media element per current
// attachment is inserted in attachment position order, each before the
// position-th text paragraph (appended when the position is past the last
// paragraph). This pins down an interleaving rule the legacy data never
// specified; the policy is documented in DESIGN.md. Returns the rebuilt
// length.
func (s *Synchronizer) Rebuild(ctx context.Context, attachments []model.ChapterMedia) (int, error) {
	existing, _, err := s.acc.Resolve(ctx)
	if err != nil {
		return 0, err
	}
	rebuilt := make([]Element, 0, len(existing)+len(attachments))
	for _, el := range existing {
		if el.IsText() {
			rebuilt = append(rebuilt, el)
		}
	}
	for _, att := range sortedByPosition(attachments) {
		el := Media(Kind(att.MediaType), att.ID, att.Caption)
		idx := insertIndexBeforeParagraph(rebuilt, att.Position)
		rebuilt = append(rebuilt, Element{})
		copy(rebuilt[idx+1:], rebuilt[idx:])
		rebuilt[idx] = el
	}
	if err := s.acc.Save(ctx, rebuilt); err != nil {
		return 0, err
	}
	return len(rebuilt), nil
}

// insertIndexBeforeParagraph finds the index of the position-th text element
// (1-based); past the end it returns len(elements).
func insertIndexBeforeParagraph(elements []Element, position int) int {
	if position <= 0 {
		return len(elements)
	}
	count := 0
	for i, el := range elements {
		if el.IsText() {
			count++
			if count == position {
				return i
			}
		}
	}
	return len(elements)
}

type refKey struct {
	kind Kind
	id   int64
}

func sortedByPosition(attachments []model.ChapterMedia) []model.ChapterMedia {
	sorted := make([]model.ChapterMedia, len(attachments))
	copy(sorted, attachments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})
	return sorted
}
