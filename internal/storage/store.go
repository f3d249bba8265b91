// Package storage defines the persistence contract shared by the sqlite and
// postgres backends.
package storage

import (
	"context"
	"errors"

	"github.com/postcraft/backend/internal/storage/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

type StyleRepository interface {
	GetUserStyle(ctx context.Context, userID string) (*models.UserStyle, error)
	UpsertUserStyle(ctx context.Context, style *models.UserStyle) error
}

type ContentRepository interface {
	InsertGeneratedContent(ctx context.Context, content *models.GeneratedContent) error
	ListGeneratedContent(ctx context.Context, userID string) ([]models.GeneratedContent, error)
}

type Store interface {
	UserRepository
	StyleRepository
	ContentRepository
	Ping(ctx context.Context) error
	Close() error
}
