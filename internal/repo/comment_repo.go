package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/webnovel/internal/model"
	"github.com/xxxsen/webnovel/internal/pkg/dbutil"
	appErr "github.com/xxxsen/webnovel/internal/pkg/errors"
)

const (
	CommentStateNormal  = 1
	CommentStateDeleted = 2
)

var commentFields = []string{
	"id", "chapter_id", "author_id", "author_name", "content",
	"element_index", "media_id", "state", "ctime", "mtime",
}

type CommentRepo struct {
	db *sql.DB
}

func NewCommentRepo(db *sql.DB) *CommentRepo {
	return &CommentRepo{db: db}
}

func (r *CommentRepo) Create(ctx context.Context, comment *model.Comment) error {
	data := map[string]interface{}{
		"id":            comment.ID,
		"chapter_id":    comment.ChapterID,
		"author_id":     comment.AuthorID,
		"author_name":   comment.AuthorName,
		"content":       comment.Content,
		"element_index": comment.ElementIndex,
		"media_id":      comment.MediaID,
		"state":         comment.State,
		"ctime":         comment.Ctime,
		"mtime":         comment.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("comments", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *CommentRepo) GetByID(ctx context.Context, commentID string) (*model.Comment, error) {
	where := map[string]interface{}{
		"id":    commentID,
		"state": CommentStateNormal,
	}
	sqlStr, args, err := builder.BuildSelect("comments", where, commentFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	return scanComment(rows)
}

func (r *CommentRepo) ListByChapter(ctx context.Context, chapterID int64, limit, offset uint) ([]model.Comment, error) {
	where := map[string]interface{}{
		"chapter_id": chapterID,
		"state":      CommentStateNormal,
		"_orderby":   "ctime asc",
	}
	if limit > 0 {
		where["_limit"] = []uint{offset, limit}
	}
	sqlStr, args, err := builder.BuildSelect("comments", where, commentFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	comments := make([]model.Comment, 0)
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *comment)
	}
	return comments, rows.Err()
}

func (r *CommentRepo) UpdateContent(ctx context.Context, commentID, authorID, content string, mtime int64) error {
	where := map[string]interface{}{
		"id":        commentID,
		"author_id": authorID,
		"state":     CommentStateNormal,
	}
	update := map[string]interface{}{
		"content": content,
		"mtime":   mtime,
	}
	return r.update(ctx, where, update)
}

// Delete soft-deletes the comment so the row survives for moderation review.
func (r *CommentRepo) Delete(ctx context.Context, commentID, authorID string, mtime int64) error {
	where := map[string]interface{}{
		"id":    commentID,
		"state": CommentStateNormal,
	}
	if authorID != "" {
		where["author_id"] = authorID
	}
	update := map[string]interface{}{
		"state": CommentStateDeleted,
		"mtime": mtime,
	}
	return r.update(ctx, where, update)
}

func (r *CommentRepo) update(ctx context.Context, where, update map[string]interface{}) error {
	sqlStr, args, err := builder.BuildUpdate("comments", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *CommentRepo) CountByChapter(ctx context.Context, chapterID int64) (int, error) {
	sqlStr, args := dbutil.Finalize("SELECT COUNT(1) FROM comments WHERE chapter_id = ? AND state = ?",
		[]interface{}{chapterID, CommentStateNormal})
	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanComment(rows *sql.Rows) (*model.Comment, error) {
	var comment model.Comment
	if err := rows.Scan(&comment.ID, &comment.ChapterID, &comment.AuthorID, &comment.AuthorName,
		&comment.Content, &comment.ElementIndex, &comment.MediaID, &comment.State,
		&comment.Ctime, &comment.Mtime); err != nil {
		return nil, err
	}
	return &comment, nil
}
