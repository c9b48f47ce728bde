// internal/store/store.go
//
// Persistence interfaces for posts and users.
// Two implementations live in this package:
//   - SQL    (database/sql + squirrel; sqlite3 or Postgres via pgx)
//   - Memory (maps guarded by a mutex; tests and local demos)

package store

import (
	"context"
	"errors"

	"github.com/sterry/blog-api/internal/model"
)

// ErrNotFound is returned when the addressed row does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique constraint (users.email) is violated.
var ErrDuplicate = errors.New("already exists")

//go:generate mockgen -source=store.go -destination=mock_store.go -package=store

// PostStore is the post repository used by the HTTP handlers.
type PostStore interface {
	// CreatePost inserts p and returns it with the generated ID.
	CreatePost(ctx context.Context, p model.Post) (model.Post, error)

	// ListPosts returns every post ordered by ID.
	ListPosts(ctx context.Context) ([]model.Post, error)

	// GetPost returns ErrNotFound when no row has the given id.
	GetPost(ctx context.Context, id int64) (model.Post, error)

	// UpdatePost changes only the non-nil fields of patch.
	UpdatePost(ctx context.Context, id int64, patch model.PostPatch) error

	// DeletePost returns ErrNotFound when nothing was deleted.
	DeletePost(ctx context.Context, id int64) error
}

// UserStore is the credential store.
type UserStore interface {
	UserByEmail(ctx context.Context, email string) (model.User, error)
	CreateUser(ctx context.Context, email, passwordHash string) (model.User, error)
}
