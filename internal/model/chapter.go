package model

const (
	ChapterStatusDraft       = "draft"
	ChapterStatusTranslating = "translating"
	ChapterStatusScheduled   = "scheduled"
	ChapterStatusPublished   = "published"
	ChapterStatusArchived    = "archived"
	ChapterStatusPrivate     = "private"
)

type Chapter struct {
	ID                int64  `json:"id"`
	BookID            int64  `json:"book_id"`
	Title             string `json:"title"`
	Slug              string `json:"slug"`
	ChapterNumber     int    `json:"chapter_number"`
	Status            string `json:"status"`
	Language          string `json:"language"`
	OriginalChapterID *int64 `json:"original_chapter_id,omitempty"`
	ParagraphStyle    string `json:"paragraph_style"`
	RawContent        string `json:"raw_content,omitempty"`
	Excerpt           string `json:"excerpt"`
	Abstract          string `json:"abstract"`
	KeyTerms          string `json:"key_terms"`
	WordCount         int    `json:"word_count"`
	CharCount         int    `json:"char_count"`
	ActiveAt          *int64 `json:"active_at,omitempty"`
	Ctime             int64  `json:"ctime"`
	Mtime             int64  `json:"mtime"`
}

// IsActive reports whether the chapter is published and past its activation
// time (now in unix millis).
func (c *Chapter) IsActive(now int64) bool {
	if c.Status != ChapterStatusPublished {
		return false
	}
	if c.ActiveAt != nil {
		return *c.ActiveAt <= now
	}
	return true
}
