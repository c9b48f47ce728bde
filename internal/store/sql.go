package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"github.com/sterry/blog-api/internal/model"
)

// ErrBuildingQuery wraps squirrel errors raised before a statement reaches
// the database.
var ErrBuildingQuery = errors.New("error building sql-query")

// Placeholder returns the squirrel placeholder format for a database/sql
// driver name.
func Placeholder(driver string) sq.PlaceholderFormat {
	if driver == "pgx" {
		return sq.Dollar
	}
	return sq.Question
}

// SQL implements PostStore and UserStore on a *sql.DB. Every value reaches
// the driver as a bound argument.
type SQL struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

// NewSQL wraps db. placeholder must match the driver, see Placeholder.
func NewSQL(db *sql.DB, placeholder sq.PlaceholderFormat) *SQL {
	return &SQL{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(placeholder),
	}
}

func (s *SQL) CreatePost(ctx context.Context, p model.Post) (model.Post, error) {
	query, args, err := s.sb.
		Insert(postsTable).
		Columns(postTitleColumn, postContentColumn, postAuthorIDColumn).
		Values(p.Title, p.Content, p.AuthorID).
		Suffix("RETURNING " + postIDColumn).
		ToSql()
	if err != nil {
		return model.Post{}, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&p.ID); err != nil {
		return model.Post{}, fmt.Errorf("exec insert post: %w", err)
	}
	return p, nil
}

func (s *SQL) ListPosts(ctx context.Context) ([]model.Post, error) {
	query, args, err := s.sb.
		Select(postColumns...).
		From(postsTable).
		OrderBy(postIDColumn).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("exec select posts: %w", err)
	}
	defer rows.Close()

	out := []model.Post{}
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *SQL) GetPost(ctx context.Context, id int64) (model.Post, error) {
	query, args, err := s.sb.
		Select(postColumns...).
		From(postsTable).
		Where(sq.Eq{postIDColumn: id}).
		ToSql()
	if err != nil {
		return model.Post{}, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	var p model.Post
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Post{}, ErrNotFound
		}
		return model.Post{}, fmt.Errorf("exec select post by id: %w", err)
	}
	return p, nil
}

// UpdatePost issues a single UPDATE whose SET clause lists only the supplied
// columns. An empty patch touches nothing and reports success if the row
// exists.
func (s *SQL) UpdatePost(ctx context.Context, id int64, patch model.PostPatch) error {
	if patch.Empty() {
		_, err := s.GetPost(ctx, id)
		return err
	}

	set := map[string]any{}
	if patch.Title != nil {
		set[postTitleColumn] = *patch.Title
	}
	if patch.Content != nil {
		set[postContentColumn] = *patch.Content
	}

	query, args, err := s.sb.
		Update(postsTable).
		SetMap(set).
		Where(sq.Eq{postIDColumn: id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec update post: %w", err)
	}
	return requireAffected(res)
}

func (s *SQL) DeletePost(ctx context.Context, id int64) error {
	query, args, err := s.sb.
		Delete(postsTable).
		Where(sq.Eq{postIDColumn: id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec delete post: %w", err)
	}
	return requireAffected(res)
}

// UserByEmail matches emails case-insensitively.
func (s *SQL) UserByEmail(ctx context.Context, email string) (model.User, error) {
	query, args, err := s.sb.
		Select(userIDColumn, userEmailColumn, userPasswordColumn).
		From(usersTable).
		Where(sq.Expr("lower("+userEmailColumn+") = lower(?)", email)).
		ToSql()
	if err != nil {
		return model.User{}, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	var u model.User
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.Email, &u.PasswordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("exec select user by email: %w", err)
	}
	return u, nil
}

func (s *SQL) CreateUser(ctx context.Context, email, passwordHash string) (model.User, error) {
	query, args, err := s.sb.
		Insert(usersTable).
		Columns(userEmailColumn, userPasswordColumn).
		Values(email, passwordHash).
		Suffix("RETURNING " + userIDColumn).
		ToSql()
	if err != nil {
		return model.User{}, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	u := model.User{Email: email, PasswordHash: passwordHash}
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&u.ID); err != nil {
		if isUniqueViolation(err) {
			return model.User{}, ErrDuplicate
		}
		return model.User{}, fmt.Errorf("exec insert user: %w", err)
	}
	return u, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
