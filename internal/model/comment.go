package model

// Comment anchors are weak references: ElementIndex points into the chapter's
// ordered content by position and is never corrected when the content is
// edited. MediaID anchors to a chapter media attachment instead. At most one
// of the two is set; both nil means a chapter-level comment.
type Comment struct {
	ID           string `json:"id"`
	ChapterID    int64  `json:"chapter_id"`
	AuthorID     string `json:"author_id"`
	AuthorName   string `json:"author_name"`
	Content      string `json:"content"`
	ElementIndex *int   `json:"element_index,omitempty"`
	MediaID      *int64 `json:"media_id,omitempty"`
	State        int    `json:"state"`
	Ctime        int64  `json:"ctime"`
	Mtime        int64  `json:"mtime"`
}
