package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sterry/blog-api/internal/auth"
	"github.com/sterry/blog-api/internal/config"
	"github.com/sterry/blog-api/internal/model"
	"github.com/sterry/blog-api/internal/store"
)

func TestOpenDBAndSchema_SQLite(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "nested", "blog.db")

	db, err := openDB(ctx, "sqlite3", dsn)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, ensureSchema(ctx, db, "sqlite3"))
	// idempotent
	require.NoError(t, ensureSchema(ctx, db, "sqlite3"))

	st := store.NewSQL(db, store.Placeholder("sqlite3"))
	p, err := st.CreatePost(ctx, model.Post{Title: "t", Content: "c", AuthorID: 1})
	require.NoError(t, err)
	require.Equal(t, int64(1), p.ID)
}

func TestOpenDB_UnknownDriver(t *testing.T) {
	_, err := openDB(context.Background(), "oracle", "x")
	require.Error(t, err)
}

func TestRunUserAdd(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()

	require.NoError(t, runUserAdd(ctx, mem, []string{"-email", " ann@example.com ", "-password", "pw123"}))

	u, err := mem.UserByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	require.True(t, auth.CheckPassword(u.PasswordHash, "pw123"))

	err = runUserAdd(ctx, mem, []string{"-email", "ann@example.com", "-password", "other"})
	require.ErrorIs(t, err, store.ErrDuplicate)

	require.Error(t, runUserAdd(ctx, mem, []string{"-email", "bob@example.com"}))
}

func TestSeedUser(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()

	t.Setenv("SEED_USER_EMAIL", "")
	require.NoError(t, seedUser(ctx, mem))
	_, err := mem.UserByEmail(ctx, "seed@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	t.Setenv("SEED_USER_EMAIL", "seed@example.com")
	t.Setenv("SEED_USER_PASSWORD", "pw")
	require.NoError(t, seedUser(ctx, mem))
	require.NoError(t, seedUser(ctx, mem))

	u, err := mem.UserByEmail(ctx, "seed@example.com")
	require.NoError(t, err)
	require.Equal(t, int64(1), u.ID)
}

func TestUserAddCmd(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{DB: config.DBConfig{
		Driver: "sqlite3",
		URL:    filepath.Join(t.TempDir(), "blog.db"),
	}}

	require.NoError(t, userAddCmd(ctx, cfg, []string{"-email", "ann@example.com", "-password", "pw123"}))
	err := userAddCmd(ctx, cfg, []string{"-email", "ANN@example.com", "-password", "pw456"})
	require.ErrorIs(t, err, store.ErrDuplicate)

	// the command closed its handle; the row is visible to a fresh one
	st, err := openStores(ctx, cfg)
	require.NoError(t, err)
	defer func() { _ = st.close() }()
	u, err := st.users.UserByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	require.True(t, auth.CheckPassword(u.PasswordHash, "pw123"))

	cfg.DB.Driver = "memory"
	require.Error(t, userAddCmd(ctx, cfg, []string{"-email", "bob@example.com", "-password", "pw"}))
}
