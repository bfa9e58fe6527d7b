package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/webnovel/internal/model"
	"github.com/xxxsen/webnovel/internal/pkg/dbutil"
	appErr "github.com/xxxsen/webnovel/internal/pkg/errors"
)

var bookFields = []string{
	"id", "owner_id", "title", "slug", "description", "language", "status",
	"original_book_id", "total_chapters", "total_words", "total_chars", "ctime", "mtime",
}

type BookRepo struct {
	db *sql.DB
}

func NewBookRepo(db *sql.DB) *BookRepo {
	return &BookRepo{db: db}
}

func (r *BookRepo) Create(ctx context.Context, book *model.Book) error {
	data := map[string]interface{}{
		"owner_id":         book.OwnerID,
		"title":            book.Title,
		"slug":             book.Slug,
		"description":      book.Description,
		"language":         book.Language,
		"status":           book.Status,
		"original_book_id": book.OriginalBookID,
		"total_chapters":   book.TotalChapters,
		"total_words":      book.TotalWords,
		"total_chars":      book.TotalChars,
		"ctime":            book.Ctime,
		"mtime":            book.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("books", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr+" RETURNING id", args)
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&book.ID); err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *BookRepo) Update(ctx context.Context, book *model.Book) error {
	where := map[string]interface{}{
		"id":       book.ID,
		"owner_id": book.OwnerID,
	}
	update := map[string]interface{}{
		"title":       book.Title,
		"description": book.Description,
		"language":    book.Language,
		"status":      book.Status,
		"mtime":       book.Mtime,
	}
	return r.update(ctx, where, update)
}

// UpdateStats writes the denormalized chapter rollup used in listings.
func (r *BookRepo) UpdateStats(ctx context.Context, bookID int64, chapters, words, chars int, mtime int64) error {
	where := map[string]interface{}{
		"id": bookID,
	}
	update := map[string]interface{}{
		"total_chapters": chapters,
		"total_words":    words,
		"total_chars":    chars,
		"mtime":          mtime,
	}
	return r.update(ctx, where, update)
}

func (r *BookRepo) update(ctx context.Context, where, update map[string]interface{}) error {
	sqlStr, args, err := builder.BuildUpdate("books", where, update)
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

func (r *BookRepo) GetByID(ctx context.Context, bookID int64) (*model.Book, error) {
	return r.getOne(ctx, map[string]interface{}{"id": bookID})
}

func (r *BookRepo) GetBySlug(ctx context.Context, slug string) (*model.Book, error) {
	return r.getOne(ctx, map[string]interface{}{"slug": slug})
}

func (r *BookRepo) getOne(ctx context.Context, where map[string]interface{}) (*model.Book, error) {
	sqlStr, args, err := builder.BuildSelect("books", where, bookFields)
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
	book, err := scanBook(rows)
	if err != nil {
		return nil, err
	}
	return book, nil
}

func (r *BookRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	sqlStr, args := dbutil.Finalize("SELECT COUNT(1) FROM books WHERE slug = ?", []interface{}{slug})
	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *BookRepo) List(ctx context.Context, ownerID, status string, limit, offset uint) ([]model.Book, error) {
	where := map[string]interface{}{
		"_orderby": "mtime desc",
	}
	if ownerID != "" {
		where["owner_id"] = ownerID
	}
	if status != "" {
		where["status"] = status
	}
	if limit > 0 {
		where["_limit"] = []uint{offset, limit}
	}
	sqlStr, args, err := builder.BuildSelect("books", where, bookFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	books := make([]model.Book, 0)
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, *book)
	}
	return books, rows.Err()
}

func (r *BookRepo) Count(ctx context.Context, ownerID string) (int, error) {
	sqlStr, args := dbutil.Finalize("SELECT COUNT(1) FROM books WHERE owner_id = ?", []interface{}{ownerID})
	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Delete removes the book row; chapters, media and comments go with it via
// foreign key cascade.
func (r *BookRepo) Delete(ctx context.Context, ownerID string, bookID int64) error {
	sqlStr, args := dbutil.Finalize("DELETE FROM books WHERE id = ? AND owner_id = ?", []interface{}{bookID, ownerID})
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

func scanBook(rows *sql.Rows) (*model.Book, error) {
	var book model.Book
	if err := rows.Scan(&book.ID, &book.OwnerID, &book.Title, &book.Slug, &book.Description,
		&book.Language, &book.Status, &book.OriginalBookID, &book.TotalChapters,
		&book.TotalWords, &book.TotalChars, &book.Ctime, &book.Mtime); err != nil {
		return nil, err
	}
	return &book, nil
}
