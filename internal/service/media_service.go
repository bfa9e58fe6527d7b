package service

import (
	"context"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/webnovel/internal/content"
	"github.com/xxxsen/webnovel/internal/filestore"
	"github.com/xxxsen/webnovel/internal/model"
	appErr "github.com/xxxsen/webnovel/internal/pkg/errors"
	"github.com/xxxsen/webnovel/internal/repo"
)

type MediaService struct {
	books    *repo.BookRepo
	chapters *repo.ChapterRepo
	media    *repo.MediaRepo
	files    filestore.Store
	chapter  *ChapterService
	baseURL  string
}

func NewMediaService(books *repo.BookRepo, chapters *repo.ChapterRepo, media *repo.MediaRepo, files filestore.Store, chapter *ChapterService, baseURL string) *MediaService {
	return &MediaService{
		books:    books,
		chapters: chapters,
		media:    media,
		files:    files,
		chapter:  chapter,
		baseURL:  baseURL,
	}
}

var extToMediaType = map[string]string{
	".jpg": model.MediaTypeImage, ".jpeg": model.MediaTypeImage, ".png": model.MediaTypeImage,
	".gif": model.MediaTypeImage, ".webp": model.MediaTypeImage, ".svg": model.MediaTypeImage,
	".mp3": model.MediaTypeAudio, ".wav": model.MediaTypeAudio, ".ogg": model.MediaTypeAudio,
	".m4a": model.MediaTypeAudio, ".flac": model.MediaTypeAudio,
	".mp4": model.MediaTypeVideo, ".webm": model.MediaTypeVideo, ".mkv": model.MediaTypeVideo,
	".mov": model.MediaTypeVideo,
	".pdf": model.MediaTypeDocument, ".epub": model.MediaTypeDocument, ".txt": model.MediaTypeDocument,
	".docx": model.MediaTypeDocument,
}

// DetectMediaType maps a filename extension to an attachment type.
func DetectMediaType(filename string) (string, bool) {
	mediaType, ok := extToMediaType[strings.ToLower(filepath.Ext(filename))]
	return mediaType, ok
}

func (s *MediaService) ownedChapter(ctx context.Context, ownerID string, chapterID int64) (*model.Chapter, error) {
	chapter, err := s.chapters.GetByID(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	book, err := s.books.GetByID(ctx, chapter.BookID)
	if err != nil {
		return nil, err
	}
	if book.OwnerID != ownerID {
		return nil, appErr.ErrForbidden
	}
	return chapter, nil
}

type UploadArgs struct {
	Filename string
	Size     int64
	Title    string
	Caption  string
	AltText  string
	Duration *int
}

// Upload stores the file under the chapter's media key, records the
// attachment at position MAX+1 and appends an element to the chapter's
// ordered content.
func (s *MediaService) Upload(ctx context.Context, ownerID string, chapterID int64, body filestore.ReadSeekCloser, args UploadArgs) (*model.ChapterMedia, error) {
	chapter, err := s.ownedChapter(ctx, ownerID, chapterID)
	if err != nil {
		return nil, err
	}
	mediaType, ok := DetectMediaType(args.Filename)
	if !ok {
		return nil, appErr.ErrInvalid
	}
	position, err := s.media.NextPosition(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	typeCount, err := s.media.CountByType(ctx, chapterID, mediaType)
	if err != nil {
		return nil, err
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(args.Filename)), ".")
	key := content.MediaKey(mediaType, chapter.BookID, chapterID, typeCount+1, ext)
	if err := s.files.Save(ctx, key, body, args.Size); err != nil {
		return nil, appErr.ErrUploadFailed
	}
	now := time.Now().UnixMilli()
	media := &model.ChapterMedia{
		ChapterID: chapterID,
		MediaType: mediaType,
		FileKey:   key,
		URL:       s.files.URL(key, s.baseURL),
		Title:     args.Title,
		Caption:   args.Caption,
		AltText:   args.AltText,
		Position:  position,
		Duration:  args.Duration,
		FileSize:  args.Size,
		MimeType:  mime.TypeByExtension("." + ext),
		Ctime:     now,
		Mtime:     now,
	}
	if err := s.media.Create(ctx, media); err != nil {
		return nil, err
	}
	if _, err := s.chapter.SyncMedia(ctx, ownerID, chapterID); err != nil {
		logutil.GetLogger(ctx).Warn("sync media into content failed",
			zap.Int64("chapter_id", chapterID), zap.Int64("media_id", media.ID), zap.Error(err))
	}
	return media, nil
}

func (s *MediaService) List(ctx context.Context, chapterID int64, mediaType string) ([]model.ChapterMedia, error) {
	if mediaType != "" && !model.ValidMediaType(mediaType) {
		return nil, appErr.ErrInvalid
	}
	return s.media.ListByChapter(ctx, chapterID, mediaType)
}

func (s *MediaService) Get(ctx context.Context, mediaID int64) (*model.ChapterMedia, error) {
	return s.media.GetByID(ctx, mediaID)
}

type UpdateMediaArgs struct {
	Title    string
	Caption  string
	AltText  string
	Duration *int
}

func (s *MediaService) Update(ctx context.Context, ownerID string, mediaID int64, args UpdateMediaArgs) (*model.ChapterMedia, error) {
	media, err := s.media.GetByID(ctx, mediaID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedChapter(ctx, ownerID, media.ChapterID); err != nil {
		return nil, err
	}
	if args.Title != "" {
		media.Title = args.Title
	}
	if args.Caption != "" {
		media.Caption = args.Caption
	}
	if args.AltText != "" {
		media.AltText = args.AltText
	}
	if args.Duration != nil {
		media.Duration = args.Duration
	}
	media.Mtime = time.Now().UnixMilli()
	if err := s.media.Update(ctx, media); err != nil {
		return nil, err
	}
	return media, nil
}

// Reorder renumbers the chapter's attachments to the given id order.
func (s *MediaService) Reorder(ctx context.Context, ownerID string, chapterID int64, mediaIDs []int64) error {
	if _, err := s.ownedChapter(ctx, ownerID, chapterID); err != nil {
		return err
	}
	existing, err := s.media.ListByChapter(ctx, chapterID, "")
	if err != nil {
		return err
	}
	if len(mediaIDs) != len(existing) {
		return appErr.ErrInvalid
	}
	return s.media.UpdatePositions(ctx, chapterID, mediaIDs, time.Now().UnixMilli())
}

// Delete removes the attachment row, its stored file and any content element
// referencing it.
func (s *MediaService) Delete(ctx context.Context, ownerID string, mediaID int64) error {
	media, err := s.media.GetByID(ctx, mediaID)
	if err != nil {
		return err
	}
	if _, err := s.ownedChapter(ctx, ownerID, media.ChapterID); err != nil {
		return err
	}
	if err := s.media.Delete(ctx, media.ChapterID, mediaID); err != nil {
		return err
	}
	if err := s.files.Delete(ctx, media.FileKey); err != nil {
		logutil.GetLogger(ctx).Warn("delete media file failed",
			zap.String("file_key", media.FileKey), zap.Error(err))
	}
	if err := s.removeElements(ctx, ownerID, media); err != nil {
		logutil.GetLogger(ctx).Warn("remove media elements failed",
			zap.Int64("media_id", mediaID), zap.Error(err))
	}
	return nil
}

func (s *MediaService) removeElements(ctx context.Context, ownerID string, media *model.ChapterMedia) error {
	cc, err := s.chapter.GetContent(ctx, media.ChapterID)
	if err != nil {
		return err
	}
	for i := len(cc.Elements) - 1; i >= 0; i-- {
		el := cc.Elements[i]
		if el.IsText() {
			continue
		}
		if ref, ok := el.Ref(); ok && ref == media.ID && string(el.Kind) == media.MediaType {
			if _, err := s.chapter.DeleteElement(ctx, ownerID, media.ChapterID, i); err != nil {
				return err
			}
		}
	}
	return nil
}
