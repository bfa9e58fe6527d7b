package content

import (
	"fmt"
	"strings"
)

// Storage keys are derived from (book id, chapter id) only, so the same
// chapter always maps to the same location and the layout stays predictable
// for external backup/restore tooling. Pure computation; directory creation
// happens in the file store at write time.

// ContentKey is the storage key of a chapter's ordered content file.
func ContentKey(bookID, chapterID int64) string {
	return fmt.Sprintf("content/chapters/book_%d/chapter_%d.json", bookID, chapterID)
}

// MediaKey is the storage key of the n-th media file of a given type in a
// chapter. ext is the bare extension without the leading dot.
func MediaKey(mediaType string, bookID, chapterID int64, n int, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	return fmt.Sprintf("%s/book_%d/chapter_%d/%s_%d.%s", mediaType, bookID, chapterID, mediaType, n, ext)
}

// LegacyImageKey is the storage key layout of the pre-attachment image
// scheme, kept for reading old deployments.
func LegacyImageKey(bookID, chapterID int64, position int, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	return fmt.Sprintf("images/book_%d/chapter_%d/image_%d.%s", bookID, chapterID, position, ext)
}
