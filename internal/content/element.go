package content

import (
	"encoding/json"
	"fmt"

	appErr "github.com/xxxsen/webnovel/internal/pkg/errors"
)

// Kind is the closed set of element types a chapter's ordered content can
// hold. Anything else in a stored file is a storage error, never silently
// skipped.
type Kind string

const (
	KindParagraph Kind = "paragraph"
	KindImage     Kind = "image"
	KindAudio     Kind = "audio"
	KindVideo     Kind = "video"
	KindDocument  Kind = "document"
)

func validKind(k Kind) bool {
	switch k {
	case KindParagraph, KindImage, KindAudio, KindVideo, KindDocument:
		return true
	}
	return false
}

// Element is one addressable unit of chapter content. A paragraph carries
// Content only; a media element carries Caption and exactly one of ImageID
// (legacy image reference scheme) or MediaID (current attachment model).
// Elements have no durable identity of their own: an element is addressed by
// its zero-based position in the chapter sequence.
type Element struct {
	Kind    Kind
	Content string
	ImageID *int64
	MediaID *int64
	Caption string
}

// Paragraph builds a text element.
func Paragraph(content string) Element {
	return Element{Kind: KindParagraph, Content: content}
}

// Media builds a media element referencing a current attachment id.
func Media(kind Kind, mediaID int64, caption string) Element {
	return Element{Kind: kind, MediaID: &mediaID, Caption: caption}
}

// LegacyImage builds an image element using the pre-attachment image_id
// reference scheme. Only decoding of old files and explicit migration paths
// should need this.
func LegacyImage(imageID int64, caption string) Element {
	return Element{Kind: KindImage, ImageID: &imageID, Caption: caption}
}

func (e Element) IsText() bool {
	return e.Kind == KindParagraph
}

// Ref returns the media reference id regardless of which scheme carries it.
func (e Element) Ref() (int64, bool) {
	if e.MediaID != nil {
		return *e.MediaID, true
	}
	if e.ImageID != nil {
		return *e.ImageID, true
	}
	return 0, false
}

func (e Element) Validate() error {
	if !validKind(e.Kind) {
		return fmt.Errorf("%w: unknown element type %q", appErr.ErrStorage, string(e.Kind))
	}
	if e.Kind == KindParagraph {
		if e.ImageID != nil || e.MediaID != nil {
			return fmt.Errorf("%w: paragraph element carries a media reference", appErr.ErrStorage)
		}
		return nil
	}
	if (e.ImageID != nil) == (e.MediaID != nil) {
		return fmt.Errorf("%w: %s element must carry exactly one of image_id/media_id", appErr.ErrStorage, e.Kind)
	}
	if e.ImageID != nil && e.Kind != KindImage {
		return fmt.Errorf("%w: image_id is only valid on image elements", appErr.ErrStorage)
	}
	return nil
}

type elementJSON struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	ImageID *int64 `json:"image_id,omitempty"`
	MediaID *int64 `json:"media_id,omitempty"`
	Caption string `json:"caption,omitempty"`
}

func (e Element) MarshalJSON() ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if e.Kind == KindParagraph {
		return json.Marshal(struct {
			Type    string `json:"type"`
			Content string `json:"content"`
		}{Type: string(e.Kind), Content: e.Content})
	}
	return json.Marshal(struct {
		Type    string `json:"type"`
		ImageID *int64 `json:"image_id,omitempty"`
		MediaID *int64 `json:"media_id,omitempty"`
		Caption string `json:"caption"`
	}{Type: string(e.Kind), ImageID: e.ImageID, MediaID: e.MediaID, Caption: e.Caption})
}

func (e *Element) UnmarshalJSON(data []byte) error {
	var raw elementJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = Element{
		Kind:    Kind(raw.Type),
		Content: raw.Content,
		ImageID: raw.ImageID,
		MediaID: raw.MediaID,
		Caption: raw.Caption,
	}
	return e.Validate()
}
