// internal/store/memory.go
//
// In-memory implementation of PostStore and UserStore.
// Used by handler tests and by DB_DRIVER=memory for local runs.
//
// Characteristics:
//   - Rows keyed by ID in maps; IDs are assigned sequentially from 1.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/sterry/blog-api/internal/model"
)

// Memory is a map-based PostStore and UserStore.
type Memory struct {
	mu     sync.RWMutex
	posts  map[int64]model.Post
	users  map[int64]model.User
	nextID struct{ post, user int64 }
}

// NewMemory constructs an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		posts: make(map[int64]model.Post),
		users: make(map[int64]model.User),
	}
}

func (m *Memory) CreatePost(_ context.Context, p model.Post) (model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID.post++
	p.ID = m.nextID.post
	m.posts[p.ID] = p
	return p, nil
}

func (m *Memory) ListPosts(_ context.Context) ([]model.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Post, 0, len(m.posts))
	for _, p := range m.posts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetPost(_ context.Context, id int64) (model.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.posts[id]; ok {
		return p, nil
	}
	return model.Post{}, ErrNotFound
}

func (m *Memory) UpdatePost(_ context.Context, id int64, patch model.PostPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return ErrNotFound
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	m.posts[id] = p
	return nil
}

func (m *Memory) DeletePost(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

// UserByEmail matches emails case-insensitively.
func (m *Memory) UserByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return model.User{}, ErrNotFound
}

func (m *Memory) CreateUser(_ context.Context, email, passwordHash string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return model.User{}, ErrDuplicate
		}
	}
	m.nextID.user++
	u := model.User{ID: m.nextID.user, Email: email, PasswordHash: passwordHash}
	m.users[u.ID] = u
	return u, nil
}
