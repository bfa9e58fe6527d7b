package service

import (
	"bytes"
	"context"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/xxxsen/webnovel/internal/content"
	"github.com/xxxsen/webnovel/internal/model"
	appErr "github.com/xxxsen/webnovel/internal/pkg/errors"
	"github.com/xxxsen/webnovel/internal/repo"
)

type CommentService struct {
	comments *repo.CommentRepo
	chapters *repo.ChapterRepo
	media    *repo.MediaRepo
	store    *content.Store
	md       goldmark.Markdown
}

func NewCommentService(comments *repo.CommentRepo, chapters *repo.ChapterRepo, media *repo.MediaRepo, store *content.Store) *CommentService {
	return &CommentService{
		comments: comments,
		chapters: chapters,
		media:    media,
		store:    store,
		md:       goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

type CreateCommentArgs struct {
	Content      string
	ElementIndex *int
	MediaID      *int64
}

func (s *CommentService) Create(ctx context.Context, authorID, authorName string, chapterID int64, args CreateCommentArgs) (*model.Comment, error) {
	if args.Content == "" {
		return nil, appErr.ErrInvalid
	}
	if args.ElementIndex != nil && args.MediaID != nil {
		return nil, appErr.ErrInvalid
	}
	if args.ElementIndex != nil && *args.ElementIndex < 0 {
		return nil, appErr.ErrInvalid
	}
	if _, err := s.chapters.GetByID(ctx, chapterID); err != nil {
		return nil, err
	}
	if args.MediaID != nil {
		media, err := s.media.GetByID(ctx, *args.MediaID)
		if err != nil {
			return nil, err
		}
		if media.ChapterID != chapterID {
			return nil, appErr.ErrInvalid
		}
	}
	now := time.Now().UnixMilli()
	comment := &model.Comment{
		ID:           newID(),
		ChapterID:    chapterID,
		AuthorID:     authorID,
		AuthorName:   authorName,
		Content:      args.Content,
		ElementIndex: args.ElementIndex,
		MediaID:      args.MediaID,
		State:        repo.CommentStateNormal,
		Ctime:        now,
		Mtime:        now,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// CommentView is a comment plus its rendered body and resolved anchor.
type CommentView struct {
	model.Comment
	HTML   string              `json:"html"`
	Anchor *content.Resolution `json:"anchor,omitempty"`
}

// List returns the chapter's comments with anchors resolved against the
// current content. Anchors that no longer point anywhere come back Stale;
// they are reported as-is, never repaired.
func (s *CommentService) List(ctx context.Context, chapterID int64, limit, offset uint) ([]CommentView, error) {
	chapter, err := s.chapters.GetByID(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByChapter(ctx, chapterID, limit, offset)
	if err != nil {
		return nil, err
	}
	acc := content.NewAccessor(s.store, content.ChapterRef{
		BookID:     chapter.BookID,
		ChapterID:  chapter.ID,
		RawContent: chapter.RawContent,
		Style:      content.ParagraphStyle(chapter.ParagraphStyle),
	})
	// load the element sequence once, not per anchored comment
	elements, _, err := acc.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]CommentView, 0, len(comments))
	for _, comment := range comments {
		view := CommentView{Comment: comment, HTML: s.render(comment.Content)}
		if comment.ElementIndex != nil || comment.MediaID != nil {
			view.Anchor = content.ResolveAnchor(elements, &comment)
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *CommentService) render(markdown string) string {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(markdown), &buf); err != nil {
		return ""
	}
	return buf.String()
}

func (s *CommentService) Update(ctx context.Context, authorID, commentID, body string) (*model.Comment, error) {
	if body == "" {
		return nil, appErr.ErrInvalid
	}
	if err := s.comments.UpdateContent(ctx, commentID, authorID, body, time.Now().UnixMilli()); err != nil {
		return nil, err
	}
	return s.comments.GetByID(ctx, commentID)
}

func (s *CommentService) Delete(ctx context.Context, authorID, commentID string) error {
	return s.comments.Delete(ctx, commentID, authorID, time.Now().UnixMilli())
}

func (s *CommentService) Count(ctx context.Context, chapterID int64) (int, error) {
	return s.comments.CountByChapter(ctx, chapterID)
}
