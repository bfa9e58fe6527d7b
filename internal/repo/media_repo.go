package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/webnovel/internal/model"
	"github.com/xxxsen/webnovel/internal/pkg/dbutil"
	appErr "github.com/xxxsen/webnovel/internal/pkg/errors"
)

var mediaFields = []string{
	"id", "chapter_id", "media_type", "file_key", "url", "title", "caption",
	"alt_text", "position", "duration", "file_size", "mime_type", "ctime", "mtime",
}

type MediaRepo struct {
	db *sql.DB
}

func NewMediaRepo(db *sql.DB) *MediaRepo {
	return &MediaRepo{db: db}
}

// NextPosition returns MAX(position)+1 among all of the chapter's attachments,
// starting at 1. Position orders media across types; an image and an audio in
// the same chapter never share a position.
func (r *MediaRepo) NextPosition(ctx context.Context, chapterID int64) (int, error) {
	sqlStr, args := dbutil.Finalize(
		"SELECT COALESCE(MAX(position), 0) + 1 FROM chapter_media WHERE chapter_id = ?",
		[]interface{}{chapterID})
	var position int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&position); err != nil {
		return 0, err
	}
	return position, nil
}

// CountByType returns how many attachments of the given type the chapter has.
// Used to derive per-type file names, independent of ordering positions.
func (r *MediaRepo) CountByType(ctx context.Context, chapterID int64, mediaType string) (int, error) {
	sqlStr, args := dbutil.Finalize(
		"SELECT COUNT(1) FROM chapter_media WHERE chapter_id = ? AND media_type = ?",
		[]interface{}{chapterID, mediaType})
	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *MediaRepo) Create(ctx context.Context, media *model.ChapterMedia) error {
	data := map[string]interface{}{
		"chapter_id": media.ChapterID,
		"media_type": media.MediaType,
		"file_key":   media.FileKey,
		"url":        media.URL,
		"title":      media.Title,
		"caption":    media.Caption,
		"alt_text":   media.AltText,
		"position":   media.Position,
		"duration":   media.Duration,
		"file_size":  media.FileSize,
		"mime_type":  media.MimeType,
		"ctime":      media.Ctime,
		"mtime":      media.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("chapter_media", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr+" RETURNING id", args)
	return r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&media.ID)
}

func (r *MediaRepo) Update(ctx context.Context, media *model.ChapterMedia) error {
	where := map[string]interface{}{
		"id":         media.ID,
		"chapter_id": media.ChapterID,
	}
	update := map[string]interface{}{
		"title":    media.Title,
		"caption":  media.Caption,
		"alt_text": media.AltText,
		"duration": media.Duration,
		"mtime":    media.Mtime,
	}
	return r.update(ctx, where, update)
}

// UpdatePositions renumbers the given attachments to 1..n in slice order.
func (r *MediaRepo) UpdatePositions(ctx context.Context, chapterID int64, mediaIDs []int64, mtime int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for i, id := range mediaIDs {
		sqlStr, args := dbutil.Finalize("UPDATE chapter_media SET position = ?, mtime = ? WHERE id = ? AND chapter_id = ?",
			[]interface{}{i + 1, mtime, id, chapterID})
		result, err := tx.ExecContext(ctx, sqlStr, args...)
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
	}
	return tx.Commit()
}

func (r *MediaRepo) update(ctx context.Context, where, update map[string]interface{}) error {
	sqlStr, args, err := builder.BuildUpdate("chapter_media", where, update)
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

func (r *MediaRepo) GetByID(ctx context.Context, mediaID int64) (*model.ChapterMedia, error) {
	sqlStr, args, err := builder.BuildSelect("chapter_media", map[string]interface{}{"id": mediaID}, mediaFields)
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
	return scanMedia(rows)
}

func (r *MediaRepo) ListByChapter(ctx context.Context, chapterID int64, mediaType string) ([]model.ChapterMedia, error) {
	where := map[string]interface{}{
		"chapter_id": chapterID,
		"_orderby":   "position asc, id asc",
	}
	if mediaType != "" {
		where["media_type"] = mediaType
	}
	sqlStr, args, err := builder.BuildSelect("chapter_media", where, mediaFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	medias := make([]model.ChapterMedia, 0)
	for rows.Next() {
		media, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		medias = append(medias, *media)
	}
	return medias, rows.Err()
}

func (r *MediaRepo) Delete(ctx context.Context, chapterID, mediaID int64) error {
	sqlStr, args := dbutil.Finalize("DELETE FROM chapter_media WHERE id = ? AND chapter_id = ?", []interface{}{mediaID, chapterID})
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

func scanMedia(rows *sql.Rows) (*model.ChapterMedia, error) {
	var media model.ChapterMedia
	if err := rows.Scan(&media.ID, &media.ChapterID, &media.MediaType, &media.FileKey,
		&media.URL, &media.Title, &media.Caption, &media.AltText, &media.Position,
		&media.Duration, &media.FileSize, &media.MimeType, &media.Ctime, &media.Mtime); err != nil {
		return nil, err
	}
	return &media, nil
}
