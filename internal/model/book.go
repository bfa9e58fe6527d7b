package model

const (
	BookStatusDraft     = "draft"
	BookStatusPublished = "published"
	BookStatusArchived  = "archived"
	BookStatusPrivate   = "private"
	BookStatusCompleted = "completed"
	BookStatusOnHold    = "on_hold"
)

type Book struct {
	ID             int64  `json:"id"`
	OwnerID        string `json:"owner_id"`
	Title          string `json:"title"`
	Slug           string `json:"slug"`
	Description    string `json:"description"`
	Language       string `json:"language"`
	Status         string `json:"status"`
	OriginalBookID *int64 `json:"original_book_id,omitempty"`
	TotalChapters  int    `json:"total_chapters"`
	TotalWords     int    `json:"total_words"`
	TotalChars     int    `json:"total_chars"`
	Ctime          int64  `json:"ctime"`
	Mtime          int64  `json:"mtime"`
}

func ValidBookStatus(status string) bool {
	switch status {
	case BookStatusDraft, BookStatusPublished, BookStatusArchived,
		BookStatusPrivate, BookStatusCompleted, BookStatusOnHold:
		return true
	}
	return false
}
