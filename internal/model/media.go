package model

const (
	MediaTypeImage    = "image"
	MediaTypeAudio    = "audio"
	MediaTypeVideo    = "video"
	MediaTypeDocument = "document"
)

type ChapterMedia struct {
	ID        int64  `json:"id"`
	ChapterID int64  `json:"chapter_id"`
	MediaType string `json:"media_type"`
	FileKey   string `json:"file_key"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	Caption   string `json:"caption"`
	AltText   string `json:"alt_text"`
	Position  int    `json:"position"`
	Duration  *int   `json:"duration,omitempty"`
	FileSize  int64  `json:"file_size"`
	MimeType  string `json:"mime_type"`
	Ctime     int64  `json:"ctime"`
	Mtime     int64  `json:"mtime"`
}

func ValidMediaType(mediaType string) bool {
	switch mediaType {
	case MediaTypeImage, MediaTypeAudio, MediaTypeVideo, MediaTypeDocument:
		return true
	}
	return false
}
