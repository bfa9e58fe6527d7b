package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/webnovel/internal/content"
	"github.com/xxxsen/webnovel/internal/filestore"
	"github.com/xxxsen/webnovel/internal/model"
	appErr "github.com/xxxsen/webnovel/internal/pkg/errors"
	"github.com/xxxsen/webnovel/internal/repo"
)

type BookService struct {
	books    *repo.BookRepo
	chapters *repo.ChapterRepo
	media    *repo.MediaRepo
	store    *content.Store
	files    filestore.Store
}

func NewBookService(books *repo.BookRepo, chapters *repo.ChapterRepo, media *repo.MediaRepo, store *content.Store, files filestore.Store) *BookService {
	return &BookService{books: books, chapters: chapters, media: media, store: store, files: files}
}

type CreateBookArgs struct {
	Title          string
	Description    string
	Language       string
	Status         string
	OriginalBookID *int64
}

func (s *BookService) Create(ctx context.Context, ownerID string, args CreateBookArgs) (*model.Book, error) {
	if args.Title == "" {
		return nil, appErr.ErrInvalid
	}
	status := args.Status
	if status == "" {
		status = model.BookStatusDraft
	}
	if !model.ValidBookStatus(status) {
		return nil, appErr.ErrInvalid
	}
	slug, err := s.uniqueSlug(ctx, args.Title)
	if err != nil {
		return nil, err
	}
	now := time.Now().UnixMilli()
	book := &model.Book{
		OwnerID:        ownerID,
		Title:          args.Title,
		Slug:           slug,
		Description:    args.Description,
		Language:       args.Language,
		Status:         status,
		OriginalBookID: args.OriginalBookID,
		Ctime:          now,
		Mtime:          now,
	}
	if err := s.books.Create(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// uniqueSlug derives the slug from the title and suffixes -2, -3, ... until
// it is free.
func (s *BookService) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := slugify(title)
	if base == "" {
		base = "book"
	}
	slug := base
	for i := 2; ; i++ {
		exists, err := s.books.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

type UpdateBookArgs struct {
	Title       string
	Description string
	Language    string
	Status      string
}

func (s *BookService) Update(ctx context.Context, ownerID string, bookID int64, args UpdateBookArgs) (*model.Book, error) {
	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.OwnerID != ownerID {
		return nil, appErr.ErrForbidden
	}
	if args.Title != "" {
		book.Title = args.Title
	}
	if args.Description != "" {
		book.Description = args.Description
	}
	if args.Language != "" {
		book.Language = args.Language
	}
	if args.Status != "" {
		if !model.ValidBookStatus(args.Status) {
			return nil, appErr.ErrInvalid
		}
		book.Status = args.Status
	}
	book.Mtime = time.Now().UnixMilli()
	if err := s.books.Update(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *BookService) Get(ctx context.Context, bookID int64) (*model.Book, error) {
	return s.books.GetByID(ctx, bookID)
}

func (s *BookService) GetBySlug(ctx context.Context, slug string) (*model.Book, error) {
	return s.books.GetBySlug(ctx, slug)
}

func (s *BookService) List(ctx context.Context, ownerID, status string, limit, offset uint) ([]model.Book, error) {
	return s.books.List(ctx, ownerID, status, limit, offset)
}

// Delete removes the book, its chapters (db cascade) and their content files.
func (s *BookService) Delete(ctx context.Context, ownerID string, bookID int64) error {
	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return err
	}
	if book.OwnerID != ownerID {
		return appErr.ErrForbidden
	}
	chapters, err := s.chapters.ListByBook(ctx, bookID, "", 0, 0)
	if err != nil {
		return err
	}
	// attachment rows cascade with the book, collect their blobs up front
	var fileKeys []string
	for _, chapter := range chapters {
		attachments, err := s.media.ListByChapter(ctx, chapter.ID, "")
		if err != nil {
			return err
		}
		for _, attachment := range attachments {
			fileKeys = append(fileKeys, attachment.FileKey)
		}
	}
	if err := s.books.Delete(ctx, ownerID, bookID); err != nil {
		return err
	}
	for _, chapter := range chapters {
		if err := s.store.Delete(ctx, bookID, chapter.ID); err != nil {
			logutil.GetLogger(ctx).Warn("delete chapter content file failed",
				zap.Int64("book_id", bookID), zap.Int64("chapter_id", chapter.ID), zap.Error(err))
		}
	}
	for _, key := range fileKeys {
		if err := s.files.Delete(ctx, key); err != nil {
			logutil.GetLogger(ctx).Warn("delete media file failed",
				zap.Int64("book_id", bookID), zap.String("file_key", key), zap.Error(err))
		}
	}
	return nil
}

// RefreshStats recomputes the denormalized chapter/word/char totals.
func (s *BookService) RefreshStats(ctx context.Context, ownerID string, bookID int64) (*model.Book, error) {
	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.OwnerID != ownerID {
		return nil, appErr.ErrForbidden
	}
	chapters, words, chars, err := s.chapters.BookStats(ctx, bookID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UnixMilli()
	if err := s.books.UpdateStats(ctx, bookID, chapters, words, chars, now); err != nil {
		return nil, err
	}
	book.TotalChapters = chapters
	book.TotalWords = words
	book.TotalChars = chars
	book.Mtime = now
	return book, nil
}
