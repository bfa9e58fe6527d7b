package service

import (
	"context"
	"time"

	"github.com/xxxsen/webnovel/internal/model"
	appErr "github.com/xxxsen/webnovel/internal/pkg/errors"
	"github.com/xxxsen/webnovel/internal/pkg/jwt"
	"github.com/xxxsen/webnovel/internal/pkg/password"
	"github.com/xxxsen/webnovel/internal/repo"
)

type AuthService struct {
	users     *repo.UserRepo
	jwtSecret []byte
	jwtTTL    time.Duration
}

func NewAuthService(users *repo.UserRepo, secret []byte, ttl time.Duration) *AuthService {
	return &AuthService{users: users, jwtSecret: secret, jwtTTL: ttl}
}

func (s *AuthService) Register(ctx context.Context, username, displayName, plainPassword string) (*model.User, string, error) {
	if username == "" || plainPassword == "" {
		return nil, "", appErr.ErrInvalid
	}
	now := time.Now().UnixMilli()
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return nil, "", err
	}
	user := &model.User{
		ID:           newID(),
		Username:     username,
		PasswordHash: hash,
		DisplayName:  displayName,
		State:        repo.UserStateNormal,
		Ctime:        now,
		Mtime:        now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}
	token, err := jwt.GenerateToken(user.ID, user.Username, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, username, plainPassword string) (*model.User, string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, "", appErr.ErrUnauthorized
	}
	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		return nil, "", appErr.ErrUnauthorized
	}
	token, err := jwt.GenerateToken(user.ID, user.Username, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}
