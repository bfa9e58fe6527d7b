package service

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/webnovel/internal/content"
	"github.com/xxxsen/webnovel/internal/filestore"
	"github.com/xxxsen/webnovel/internal/model"
	appErr "github.com/xxxsen/webnovel/internal/pkg/errors"
	"github.com/xxxsen/webnovel/internal/repo"
)

// ChapterService owns the chapter lifecycle and every operation on a
// chapter's ordered content. Content mutations run under a per-chapter lock
// because the content file has no transactions of its own.
type ChapterService struct {
	books    *repo.BookRepo
	chapters *repo.ChapterRepo
	media    *repo.MediaRepo
	store    *content.Store
	files    filestore.Store
	locks    *chapterLocks
}

func NewChapterService(books *repo.BookRepo, chapters *repo.ChapterRepo, media *repo.MediaRepo, store *content.Store, files filestore.Store) *ChapterService {
	return &ChapterService{
		books:    books,
		chapters: chapters,
		media:    media,
		store:    store,
		files:    files,
		locks:    newChapterLocks(),
	}
}

func (s *ChapterService) accessor(chapter *model.Chapter) *content.Accessor {
	return content.NewAccessor(s.store, content.ChapterRef{
		BookID:     chapter.BookID,
		ChapterID:  chapter.ID,
		RawContent: chapter.RawContent,
		Style:      content.ParagraphStyle(chapter.ParagraphStyle),
	})
}

func (s *ChapterService) ownedChapter(ctx context.Context, ownerID string, chapterID int64) (*model.Chapter, error) {
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

type CreateChapterArgs struct {
	Title             string
	ChapterNumber     int // 0 means assign MAX+1
	Language          string
	Status            string
	ParagraphStyle    string
	RawContent        string
	OriginalChapterID *int64
}

func validChapterStatus(status string) bool {
	switch status {
	case model.ChapterStatusDraft, model.ChapterStatusTranslating, model.ChapterStatusScheduled,
		model.ChapterStatusPublished, model.ChapterStatusArchived, model.ChapterStatusPrivate:
		return true
	}
	return false
}

func (s *ChapterService) Create(ctx context.Context, ownerID string, bookID int64, args CreateChapterArgs) (*model.Chapter, error) {
	if args.Title == "" {
		return nil, appErr.ErrInvalid
	}
	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.OwnerID != ownerID {
		return nil, appErr.ErrForbidden
	}
	status := args.Status
	if status == "" {
		status = model.ChapterStatusDraft
	}
	if !validChapterStatus(status) {
		return nil, appErr.ErrInvalid
	}
	style := args.ParagraphStyle
	if style == "" {
		style = string(content.StyleAutoDetect)
	}
	if !content.ValidParagraphStyle(style) {
		return nil, appErr.ErrInvalid
	}
	number := args.ChapterNumber
	if number <= 0 {
		number, err = s.chapters.NextChapterNumber(ctx, bookID)
		if err != nil {
			return nil, err
		}
	}
	parsed := content.Parse(args.RawContent, content.ParagraphStyle(style))
	excerpt, words, chars := contentStats(parsed)
	now := time.Now().UnixMilli()
	chapter := &model.Chapter{
		BookID:            bookID,
		Title:             args.Title,
		Slug:              slugify(args.Title),
		ChapterNumber:     number,
		Status:            status,
		Language:          args.Language,
		OriginalChapterID: args.OriginalChapterID,
		ParagraphStyle:    style,
		RawContent:        args.RawContent,
		Excerpt:           excerpt,
		WordCount:         words,
		CharCount:         chars,
		KeyTerms:          "[]",
		Ctime:             now,
		Mtime:             now,
	}
	if err := s.chapters.Create(ctx, chapter); err != nil {
		return nil, err
	}
	s.refreshBookStats(ctx, bookID)
	return chapter, nil
}

type UpdateChapterArgs struct {
	Title          string
	Language       string
	ParagraphStyle string
	RawContent     *string
}

func (s *ChapterService) Update(ctx context.Context, ownerID string, chapterID int64, args UpdateChapterArgs) (*model.Chapter, error) {
	chapter, err := s.ownedChapter(ctx, ownerID, chapterID)
	if err != nil {
		return nil, err
	}
	if args.Title != "" {
		chapter.Title = args.Title
		chapter.Slug = slugify(args.Title)
	}
	if args.Language != "" {
		chapter.Language = args.Language
	}
	if args.ParagraphStyle != "" {
		if !content.ValidParagraphStyle(args.ParagraphStyle) {
			return nil, appErr.ErrInvalid
		}
		chapter.ParagraphStyle = args.ParagraphStyle
	}
	if args.RawContent != nil {
		chapter.RawContent = *args.RawContent
	}
	chapter.Mtime = time.Now().UnixMilli()
	if err := s.chapters.Update(ctx, chapter); err != nil {
		return nil, err
	}
	if args.RawContent != nil || args.ParagraphStyle != "" {
		if err := s.refreshContentMeta(ctx, chapter); err != nil {
			return nil, err
		}
	}
	return chapter, nil
}

func (s *ChapterService) Get(ctx context.Context, chapterID int64) (*model.Chapter, error) {
	return s.chapters.GetByID(ctx, chapterID)
}

func (s *ChapterService) GetByNumber(ctx context.Context, bookID int64, number int) (*model.Chapter, error) {
	return s.chapters.GetByNumber(ctx, bookID, number)
}

func (s *ChapterService) List(ctx context.Context, bookID int64, status string, limit, offset uint) ([]model.Chapter, error) {
	return s.chapters.ListByBook(ctx, bookID, status, limit, offset)
}

func (s *ChapterService) Delete(ctx context.Context, ownerID string, chapterID int64) error {
	chapter, err := s.ownedChapter(ctx, ownerID, chapterID)
	if err != nil {
		return err
	}
	unlock := s.locks.lock(chapterID)
	defer unlock()
	// attachment rows cascade with the chapter, so collect their blobs first
	attachments, err := s.media.ListByChapter(ctx, chapterID, "")
	if err != nil {
		return err
	}
	if err := s.chapters.Delete(ctx, chapter.BookID, chapterID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, chapter.BookID, chapterID); err != nil {
		logutil.GetLogger(ctx).Warn("delete content file failed",
			zap.Int64("chapter_id", chapterID), zap.Error(err))
	}
	for _, attachment := range attachments {
		if err := s.files.Delete(ctx, attachment.FileKey); err != nil {
			logutil.GetLogger(ctx).Warn("delete media file failed",
				zap.Int64("chapter_id", chapterID), zap.String("file_key", attachment.FileKey), zap.Error(err))
		}
	}
	s.refreshBookStats(ctx, chapter.BookID)
	return nil
}

// Publish makes the chapter live immediately.
func (s *ChapterService) Publish(ctx context.Context, ownerID string, chapterID int64) (*model.Chapter, error) {
	return s.setStatus(ctx, ownerID, chapterID, model.ChapterStatusPublished, nil)
}

// Schedule marks the chapter for publication at activeAt (unix millis); the
// publish job flips it to published once the time passes.
func (s *ChapterService) Schedule(ctx context.Context, ownerID string, chapterID, activeAt int64) (*model.Chapter, error) {
	if activeAt <= time.Now().UnixMilli() {
		return nil, appErr.ErrInvalid
	}
	return s.setStatus(ctx, ownerID, chapterID, model.ChapterStatusScheduled, &activeAt)
}

func (s *ChapterService) Unpublish(ctx context.Context, ownerID string, chapterID int64) (*model.Chapter, error) {
	return s.setStatus(ctx, ownerID, chapterID, model.ChapterStatusDraft, nil)
}

func (s *ChapterService) setStatus(ctx context.Context, ownerID string, chapterID int64, status string, activeAt *int64) (*model.Chapter, error) {
	chapter, err := s.ownedChapter(ctx, ownerID, chapterID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UnixMilli()
	if err := s.chapters.UpdateStatus(ctx, chapterID, status, activeAt, now); err != nil {
		return nil, err
	}
	chapter.Status = status
	chapter.ActiveAt = activeAt
	chapter.Mtime = now
	return chapter, nil
}

// PublishDue flips every scheduled chapter whose activation time has passed.
// Called by the cron job; returns how many chapters went live.
func (s *ChapterService) PublishDue(ctx context.Context, limit uint) (int, error) {
	now := time.Now().UnixMilli()
	due, err := s.chapters.ListDueScheduled(ctx, now, limit)
	if err != nil {
		return 0, err
	}
	published := 0
	for _, chapter := range due {
		activeAt := chapter.ActiveAt
		if err := s.chapters.UpdateStatus(ctx, chapter.ID, model.ChapterStatusPublished, activeAt, now); err != nil {
			logutil.GetLogger(ctx).Error("publish scheduled chapter failed",
				zap.Int64("chapter_id", chapter.ID), zap.Error(err))
			continue
		}
		published++
	}
	return published, nil
}

// ChapterContent is the resolved view of a chapter's ordered content.
type ChapterContent struct {
	Elements []content.Element `json:"elements"`
	Source   string            `json:"source"`
}

func sourceName(src content.Source) string {
	switch src {
	case content.SourceStored:
		return "stored"
	case content.SourceParsed:
		return "parsed"
	default:
		return "empty"
	}
}

func (s *ChapterService) GetContent(ctx context.Context, chapterID int64) (*ChapterContent, error) {
	chapter, err := s.chapters.GetByID(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	elements, src, err := s.accessor(chapter).Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return &ChapterContent{Elements: elements, Source: sourceName(src)}, nil
}

func (s *ChapterService) Paragraphs(ctx context.Context, chapterID int64) ([]content.NumberedParagraph, error) {
	chapter, err := s.chapters.GetByID(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	return s.accessor(chapter).Paragraphs(ctx)
}

// mutate runs fn on the chapter's accessor under the chapter lock, then
// refreshes the derived chapter and book stats.
func (s *ChapterService) mutate(ctx context.Context, ownerID string, chapterID int64, fn func(acc *content.Accessor) error) (*ChapterContent, error) {
	chapter, err := s.ownedChapter(ctx, ownerID, chapterID)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.lock(chapterID)
	defer unlock()
	acc := s.accessor(chapter)
	if err := fn(acc); err != nil {
		return nil, err
	}
	if err := s.refreshContentMeta(ctx, chapter); err != nil {
		return nil, err
	}
	elements, src, err := acc.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return &ChapterContent{Elements: elements, Source: sourceName(src)}, nil
}

func (s *ChapterService) AddParagraph(ctx context.Context, ownerID string, chapterID int64, text string, position *int) (*ChapterContent, error) {
	return s.mutate(ctx, ownerID, chapterID, func(acc *content.Accessor) error {
		return acc.AddParagraph(ctx, text, position)
	})
}

func (s *ChapterService) UpdateParagraph(ctx context.Context, ownerID string, chapterID int64, index int, text string) (*ChapterContent, error) {
	return s.mutate(ctx, ownerID, chapterID, func(acc *content.Accessor) error {
		return acc.UpdateParagraph(ctx, index, text)
	})
}

// InsertMediaElement places an element for an existing attachment at an
// explicit position (nil appends).
func (s *ChapterService) InsertMediaElement(ctx context.Context, ownerID string, chapterID, mediaID int64, position *int) (*ChapterContent, error) {
	media, err := s.media.GetByID(ctx, mediaID)
	if err != nil {
		return nil, err
	}
	if media.ChapterID != chapterID {
		return nil, appErr.ErrInvalid
	}
	return s.mutate(ctx, ownerID, chapterID, func(acc *content.Accessor) error {
		switch media.MediaType {
		case model.MediaTypeImage:
			return acc.AddImage(ctx, media.ID, media.Caption, position)
		case model.MediaTypeAudio:
			return acc.AddAudio(ctx, media.ID, media.Caption, position)
		case model.MediaTypeVideo:
			return acc.AddVideo(ctx, media.ID, media.Caption, position)
		case model.MediaTypeDocument:
			return acc.AddDocument(ctx, media.ID, media.Caption, position)
		default:
			return appErr.ErrInvalid
		}
	})
}

func (s *ChapterService) DeleteElement(ctx context.Context, ownerID string, chapterID int64, index int) (*ChapterContent, error) {
	return s.mutate(ctx, ownerID, chapterID, func(acc *content.Accessor) error {
		return acc.DeleteElement(ctx, index)
	})
}

func (s *ChapterService) ReorderElements(ctx context.Context, ownerID string, chapterID int64, newOrder []int) (*ChapterContent, error) {
	return s.mutate(ctx, ownerID, chapterID, func(acc *content.Accessor) error {
		return acc.Reorder(ctx, newOrder)
	})
}

// SyncMedia appends elements for attachments missing from the sequence.
func (s *ChapterService) SyncMedia(ctx context.Context, ownerID string, chapterID int64) (int, error) {
	chapter, err := s.ownedChapter(ctx, ownerID, chapterID)
	if err != nil {
		return 0, err
	}
	unlock := s.locks.lock(chapterID)
	defer unlock()
	attachments, err := s.media.ListByChapter(ctx, chapterID, "")
	if err != nil {
		return 0, err
	}
	appended, err := content.NewSynchronizer(s.accessor(chapter)).Sync(ctx, attachments)
	if err != nil {
		return 0, err
	}
	if appended > 0 {
		if err := s.refreshContentMeta(ctx, chapter); err != nil {
			return appended, err
		}
	}
	return appended, nil
}

// RebuildContent regenerates the media interleaving from the attachment list.
func (s *ChapterService) RebuildContent(ctx context.Context, ownerID string, chapterID int64) (int, error) {
	chapter, err := s.ownedChapter(ctx, ownerID, chapterID)
	if err != nil {
		return 0, err
	}
	unlock := s.locks.lock(chapterID)
	defer unlock()
	attachments, err := s.media.ListByChapter(ctx, chapterID, "")
	if err != nil {
		return 0, err
	}
	length, err := content.NewSynchronizer(s.accessor(chapter)).Rebuild(ctx, attachments)
	if err != nil {
		return 0, err
	}
	if err := s.refreshContentMeta(ctx, chapter); err != nil {
		return length, err
	}
	return length, nil
}

// refreshContentMeta recomputes excerpt and word/char counts from the
// resolved content and rolls the totals up to the book.
func (s *ChapterService) refreshContentMeta(ctx context.Context, chapter *model.Chapter) error {
	elements, _, err := s.accessor(chapter).Resolve(ctx)
	if err != nil {
		return err
	}
	excerpt, words, chars := contentStats(elements)
	now := time.Now().UnixMilli()
	if err := s.chapters.UpdateContentMeta(ctx, chapter.ID, excerpt, words, chars, now); err != nil {
		return err
	}
	chapter.Excerpt = excerpt
	chapter.WordCount = words
	chapter.CharCount = chars
	chapter.Mtime = now
	s.refreshBookStats(ctx, chapter.BookID)
	return nil
}

func (s *ChapterService) refreshBookStats(ctx context.Context, bookID int64) {
	chapters, words, chars, err := s.chapters.BookStats(ctx, bookID)
	if err != nil {
		logutil.GetLogger(ctx).Warn("aggregate book stats failed", zap.Int64("book_id", bookID), zap.Error(err))
		return
	}
	if err := s.books.UpdateStats(ctx, bookID, chapters, words, chars, time.Now().UnixMilli()); err != nil {
		logutil.GetLogger(ctx).Warn("update book stats failed", zap.Int64("book_id", bookID), zap.Error(err))
	}
}
