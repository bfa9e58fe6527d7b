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
	UserStateNormal   = 1
	UserStateDisabled = 2
)

var userFields = []string{"id", "username", "password_hash", "display_name", "state", "ctime", "mtime"}

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	data := map[string]interface{}{
		"id":            user.ID,
		"username":      user.Username,
		"password_hash": user.PasswordHash,
		"display_name":  user.DisplayName,
		"state":         user.State,
		"ctime":         user.Ctime,
		"mtime":         user.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("users", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil && dbutil.IsConflict(err) {
		return appErr.ErrConflict
	}
	return err
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	where := map[string]interface{}{
		"username": username,
		"state":    UserStateNormal,
	}
	return r.getOne(ctx, where)
}

func (r *UserRepo) GetByID(ctx context.Context, userID string) (*model.User, error) {
	where := map[string]interface{}{
		"id":    userID,
		"state": UserStateNormal,
	}
	return r.getOne(ctx, where)
}

func (r *UserRepo) getOne(ctx context.Context, where map[string]interface{}) (*model.User, error) {
	sqlStr, args, err := builder.BuildSelect("users", where, userFields)
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
	var user model.User
	if err := rows.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.DisplayName, &user.State, &user.Ctime, &user.Mtime); err != nil {
		return nil, err
	}
	return &user, nil
}
