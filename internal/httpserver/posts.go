package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/sterry/blog-api/internal/model"
	"github.com/sterry/blog-api/internal/store"
)

// mountPosts registers the /posts routes behind requireAuth.
func (s *Server) mountPosts() {
	s.r.Route("/posts", func(r chi.Router) {
		r.Use(s.requireAuth())
		r.Post("/", s.handleCreatePost)
		r.Get("/", s.handleListPosts)
		r.Get("/{id}", s.handleGetPost)
		r.Put("/{id}", s.handleUpdatePost)
		r.Delete("/{id}", s.handleDeletePost)
	})
}

type createPostReq struct {
	Title    string   `json:"title" validate:"required,notblank"`
	Content  string   `json:"content" validate:"required,notblank"`
	AuthorID intValue `json:"author_id" validate:"required,gt=0"`
}

// updatePostReq fields are optional; a present field must not be blank.
type updatePostReq struct {
	Title   *string `json:"title" validate:"omitnil,notblank"`
	Content *string `json:"content" validate:"omitnil,notblank"`
}

// postID parses the {id} path parameter. ok is false for non-integers, which
// can never match a stored post.
func postID(r *http.Request) (id int64, ok bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req createPostReq
	if errs := decodeAndValidate(r, &req); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	p, err := s.posts.CreatePost(r.Context(), model.Post{
		Title:    req.Title,
		Content:  req.Content,
		AuthorID: int64(req.AuthorID),
	})
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("create post")
		writeInternal(w)
		return
	}
	w.Header().Set("Location", "/posts/"+strconv.FormatInt(p.ID, 10))
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.posts.ListPosts(r.Context())
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("list posts")
		writeInternal(w)
		return
	}
	if posts == nil {
		posts = []model.Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}

// handleGetPost answers a missing post with 200 and a JSON null.
func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	p, err := s.posts.GetPost(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusOK, nil)
	case err != nil:
		hlog.FromRequest(r).Error().Err(err).Int64("post", id).Msg("get post")
		writeInternal(w)
	default:
		writeJSON(w, http.StatusOK, p)
	}
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	var req updatePostReq
	if errs := decodeAndValidate(r, &req); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	id, ok := s.authorizePostWrite(w, r)
	if !ok {
		return
	}

	err := s.posts.UpdatePost(r.Context(), id, model.PostPatch{Title: req.Title, Content: req.Content})
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Post not found")
	case err != nil:
		hlog.FromRequest(r).Error().Err(err).Int64("post", id).Msg("update post")
		writeInternal(w)
	default:
		w.WriteHeader(http.StatusOK)
	}
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := s.authorizePostWrite(w, r)
	if !ok {
		return
	}

	err := s.posts.DeletePost(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Post not found")
	case err != nil:
		hlog.FromRequest(r).Error().Err(err).Int64("post", id).Msg("delete post")
		writeInternal(w)
	default:
		w.WriteHeader(http.StatusOK)
	}
}

// authorizePostWrite loads the addressed post and checks that the token
// subject is its author. On failure it has already written the response.
func (s *Server) authorizePostWrite(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := postID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Post not found")
		return 0, false
	}
	p, err := s.posts.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Post not found")
			return 0, false
		}
		hlog.FromRequest(r).Error().Err(err).Int64("post", id).Msg("load post")
		writeInternal(w)
		return 0, false
	}
	me := currentUser(r)
	if me == nil || me.UserID != p.AuthorID {
		writeError(w, http.StatusForbidden, "Forbidden")
		return 0, false
	}
	return id, true
}
