package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sterry/blog-api/internal/model"
)

func strPtr(s string) *string { return &s }

func TestMemory_PostLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := NewMemory()

	first, err := st.CreatePost(ctx, model.Post{Title: "t1", Content: "c1", AuthorID: 1})
	require.NoError(t, err)
	require.Equal(t, int64(1), first.ID)

	second, err := st.CreatePost(ctx, model.Post{Title: "t2", Content: "c2", AuthorID: 2})
	require.NoError(t, err)
	require.Equal(t, int64(2), second.ID)

	all, err := st.ListPosts(ctx)
	require.NoError(t, err)
	require.Equal(t, []model.Post{first, second}, all)

	require.NoError(t, st.UpdatePost(ctx, first.ID, model.PostPatch{Title: strPtr("new")}))
	got, err := st.GetPost(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, model.Post{ID: 1, Title: "new", Content: "c1", AuthorID: 1}, got)

	require.NoError(t, st.DeletePost(ctx, first.ID))
	_, err = st.GetPost(ctx, first.ID)
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, st.DeletePost(ctx, first.ID), ErrNotFound)
	require.ErrorIs(t, st.UpdatePost(ctx, 99, model.PostPatch{Content: strPtr("x")}), ErrNotFound)
}

func TestMemory_ListEmpty(t *testing.T) {
	t.Parallel()

	all, err := NewMemory().ListPosts(context.Background())
	require.NoError(t, err)
	require.NotNil(t, all)
	require.Empty(t, all)
}

func TestMemory_Users(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := NewMemory()

	u, err := st.CreateUser(ctx, "a@example.com", "hash")
	require.NoError(t, err)
	require.Equal(t, int64(1), u.ID)

	_, err = st.CreateUser(ctx, "A@example.com", "hash2")
	require.ErrorIs(t, err, ErrDuplicate)

	got, err := st.UserByEmail(ctx, "A@EXAMPLE.com")
	require.NoError(t, err)
	require.Equal(t, u, got)

	_, err = st.UserByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, ErrNotFound)
}
