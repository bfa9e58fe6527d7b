package content

import (
	"context"

	"github.com/xxxsen/webnovel/internal/model"
)

// Resolver maps stored comment anchors back to live elements. Anchors are
// plain integers with no integrity guarantee: editing the chapter can leave
// them pointing past the end or at a different element. A stale anchor is a
// resolution result, not an error, and is never auto-corrected.
type Resolver struct {
	acc *Accessor
}

func NewResolver(acc *Accessor) *Resolver {
	return &Resolver{acc: acc}
}

// Resolution is the display view of a resolved anchor. Stale means the
// comment survives but currently points at nothing.
type Resolution struct {
	Stale           bool     `json:"stale"`
	Index           int      `json:"index,omitempty"`
	Element         *Element `json:"element,omitempty"`
	ParagraphNumber int      `json:"paragraph_number,omitempty"`
}

func (r *Resolver) Resolve(ctx context.Context, comment *model.Comment) (*Resolution, error) {
	elements, _, err := r.acc.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return ResolveAnchor(elements, comment), nil
}

// ResolveAnchor resolves a single anchor against an already loaded element
// sequence. Callers resolving many comments for one chapter load the sequence
// once and reuse it here.
func ResolveAnchor(elements []Element, comment *model.Comment) *Resolution {
	switch {
	case comment.ElementIndex != nil:
		return resolveIndex(elements, *comment.ElementIndex)
	case comment.MediaID != nil:
		return resolveMediaRef(elements, *comment.MediaID)
	default:
		// chapter-level comment, nothing to anchor
		return &Resolution{Stale: false}
	}
}

// ParagraphNumberFor returns the 1-based paragraph number of a text-anchored
// comment. ok is false when the anchor is stale or points at a media element.
func (r *Resolver) ParagraphNumberFor(ctx context.Context, comment *model.Comment) (int, bool, error) {
	res, err := r.Resolve(ctx, comment)
	if err != nil {
		return 0, false, err
	}
	if res.Stale || res.Element == nil || !res.Element.IsText() {
		return 0, false, nil
	}
	return res.ParagraphNumber, true, nil
}

func resolveIndex(elements []Element, index int) *Resolution {
	if index < 0 || index >= len(elements) {
		return &Resolution{Stale: true}
	}
	el := elements[index]
	res := &Resolution{Index: index, Element: &el}
	if el.IsText() {
		res.ParagraphNumber = paragraphNumberAt(elements, index)
	}
	return res
}

func resolveMediaRef(elements []Element, mediaID int64) *Resolution {
	for i, el := range elements {
		if el.IsText() {
			continue
		}
		if ref, ok := el.Ref(); ok && ref == mediaID {
			found := el
			return &Resolution{Index: i, Element: &found}
		}
	}
	return &Resolution{Stale: true}
}

func paragraphNumberAt(elements []Element, index int) int {
	number := 0
	for i := 0; i <= index && i < len(elements); i++ {
		if elements[i].IsText() {
			number++
		}
	}
	return number
}
