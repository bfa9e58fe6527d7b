package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/webnovel/internal/model"
	"github.com/xxxsen/webnovel/internal/pkg/dbutil"
	appErr "github.com/xxxsen/webnovel/internal/pkg/errors"
)

var chapterFields = []string{
	"id", "book_id", "title", "slug", "chapter_number", "status", "language",
	"original_chapter_id", "paragraph_style", "raw_content", "excerpt", "abstract",
	"key_terms", "word_count", "char_count", "active_at", "ctime", "mtime",
}

type ChapterRepo struct {
	db *sql.DB
}

func NewChapterRepo(db *sql.DB) *ChapterRepo {
	return &ChapterRepo{db: db}
}

// NextChapterNumber returns MAX(chapter_number)+1 within the book, starting
// at 1 for an empty book.
func (r *ChapterRepo) NextChapterNumber(ctx context.Context, bookID int64) (int, error) {
	sqlStr, args := dbutil.Finalize("SELECT COALESCE(MAX(chapter_number), 0) + 1 FROM chapters WHERE book_id = ?", []interface{}{bookID})
	var number int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&number); err != nil {
		return 0, err
	}
	return number, nil
}

func (r *ChapterRepo) Create(ctx context.Context, chapter *model.Chapter) error {
	data := map[string]interface{}{
		"book_id":             chapter.BookID,
		"title":               chapter.Title,
		"slug":                chapter.Slug,
		"chapter_number":      chapter.ChapterNumber,
		"status":              chapter.Status,
		"language":            chapter.Language,
		"original_chapter_id": chapter.OriginalChapterID,
		"paragraph_style":     chapter.ParagraphStyle,
		"raw_content":         chapter.RawContent,
		"excerpt":             chapter.Excerpt,
		"abstract":            chapter.Abstract,
		"key_terms":           chapter.KeyTerms,
		"word_count":          chapter.WordCount,
		"char_count":          chapter.CharCount,
		"active_at":           chapter.ActiveAt,
		"ctime":               chapter.Ctime,
		"mtime":               chapter.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("chapters", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr+" RETURNING id", args)
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&chapter.ID); err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *ChapterRepo) Update(ctx context.Context, chapter *model.Chapter) error {
	where := map[string]interface{}{
		"id":      chapter.ID,
		"book_id": chapter.BookID,
	}
	update := map[string]interface{}{
		"title":           chapter.Title,
		"slug":            chapter.Slug,
		"status":          chapter.Status,
		"language":        chapter.Language,
		"paragraph_style": chapter.ParagraphStyle,
		"raw_content":     chapter.RawContent,
		"active_at":       chapter.ActiveAt,
		"mtime":           chapter.Mtime,
	}
	return r.update(ctx, where, update)
}

func (r *ChapterRepo) UpdateStatus(ctx context.Context, chapterID int64, status string, activeAt *int64, mtime int64) error {
	where := map[string]interface{}{
		"id": chapterID,
	}
	update := map[string]interface{}{
		"status":    status,
		"active_at": activeAt,
		"mtime":     mtime,
	}
	return r.update(ctx, where, update)
}

// UpdateContentMeta refreshes the stats derived from the chapter's content.
func (r *ChapterRepo) UpdateContentMeta(ctx context.Context, chapterID int64, excerpt string, wordCount, charCount int, mtime int64) error {
	where := map[string]interface{}{
		"id": chapterID,
	}
	update := map[string]interface{}{
		"excerpt":    excerpt,
		"word_count": wordCount,
		"char_count": charCount,
		"mtime":      mtime,
	}
	return r.update(ctx, where, update)
}

func (r *ChapterRepo) UpdateAbstract(ctx context.Context, chapterID int64, abstract string, mtime int64) error {
	return r.update(ctx, map[string]interface{}{"id": chapterID}, map[string]interface{}{
		"abstract": abstract,
		"mtime":    mtime,
	})
}

func (r *ChapterRepo) UpdateKeyTerms(ctx context.Context, chapterID int64, keyTerms string, mtime int64) error {
	return r.update(ctx, map[string]interface{}{"id": chapterID}, map[string]interface{}{
		"key_terms": keyTerms,
		"mtime":     mtime,
	})
}

func (r *ChapterRepo) update(ctx context.Context, where, update map[string]interface{}) error {
	sqlStr, args, err := builder.BuildUpdate("chapters", where, update)
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

func (r *ChapterRepo) GetByID(ctx context.Context, chapterID int64) (*model.Chapter, error) {
	return r.getOne(ctx, map[string]interface{}{"id": chapterID})
}

func (r *ChapterRepo) GetByNumber(ctx context.Context, bookID int64, number int) (*model.Chapter, error) {
	return r.getOne(ctx, map[string]interface{}{"book_id": bookID, "chapter_number": number})
}

func (r *ChapterRepo) getOne(ctx context.Context, where map[string]interface{}) (*model.Chapter, error) {
	sqlStr, args, err := builder.BuildSelect("chapters", where, chapterFields)
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
	return scanChapter(rows)
}

func (r *ChapterRepo) ListByBook(ctx context.Context, bookID int64, status string, limit, offset uint) ([]model.Chapter, error) {
	where := map[string]interface{}{
		"book_id":  bookID,
		"_orderby": "chapter_number asc",
	}
	if status != "" {
		where["status"] = status
	}
	if limit > 0 {
		where["_limit"] = []uint{offset, limit}
	}
	return r.list(ctx, where)
}

// ListDueScheduled returns scheduled chapters whose activation time has
// passed, for the publish job.
func (r *ChapterRepo) ListDueScheduled(ctx context.Context, now int64, limit uint) ([]model.Chapter, error) {
	where := map[string]interface{}{
		"status":            model.ChapterStatusScheduled,
		"_custom_active_at": builder.Custom("active_at IS NOT NULL AND active_at <= ?", now),
		"_orderby":          "active_at asc",
	}
	if limit > 0 {
		where["_limit"] = []uint{0, limit}
	}
	return r.list(ctx, where)
}

func (r *ChapterRepo) list(ctx context.Context, where map[string]interface{}) ([]model.Chapter, error) {
	sqlStr, args, err := builder.BuildSelect("chapters", where, chapterFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	chapters := make([]model.Chapter, 0)
	for rows.Next() {
		chapter, err := scanChapter(rows)
		if err != nil {
			return nil, err
		}
		chapters = append(chapters, *chapter)
	}
	return chapters, rows.Err()
}

// BookStats aggregates per-book chapter totals for the denormalized rollup.
func (r *ChapterRepo) BookStats(ctx context.Context, bookID int64) (chapters, words, chars int, err error) {
	sqlStr, args := dbutil.Finalize(
		"SELECT COUNT(1), COALESCE(SUM(word_count), 0), COALESCE(SUM(char_count), 0) FROM chapters WHERE book_id = ?",
		[]interface{}{bookID})
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&chapters, &words, &chars); err != nil {
		return 0, 0, 0, err
	}
	return chapters, words, chars, nil
}

func (r *ChapterRepo) Delete(ctx context.Context, bookID, chapterID int64) error {
	sqlStr, args := dbutil.Finalize("DELETE FROM chapters WHERE id = ? AND book_id = ?", []interface{}{chapterID, bookID})
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

func scanChapter(rows *sql.Rows) (*model.Chapter, error) {
	var chapter model.Chapter
	if err := rows.Scan(&chapter.ID, &chapter.BookID, &chapter.Title, &chapter.Slug,
		&chapter.ChapterNumber, &chapter.Status, &chapter.Language, &chapter.OriginalChapterID,
		&chapter.ParagraphStyle, &chapter.RawContent, &chapter.Excerpt, &chapter.Abstract,
		&chapter.KeyTerms, &chapter.WordCount, &chapter.CharCount, &chapter.ActiveAt,
		&chapter.Ctime, &chapter.Mtime); err != nil {
		return nil, err
	}
	return &chapter, nil
}
