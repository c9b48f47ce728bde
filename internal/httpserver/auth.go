package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/hlog"

	"github.com/sterry/blog-api/internal/auth"
	"github.com/sterry/blog-api/internal/store"
)

// ctxClaimsKey is the context key type for the verified token claims.
type ctxClaimsKey struct{}

// requireAuth rejects requests without a valid, unexpired bearer token and
// stores the verified claims in the request context.
func (s *Server) requireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := auth.BearerToken(r.Header.Get("Authorization"))
			if tokenStr == "" {
				writeError(w, http.StatusUnauthorized, "Token required")
				return
			}
			claims, err := s.tokens.Verify(tokenStr)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{
					"error": "Invalid token",
					"e":     err.Error(),
				})
				return
			}
			ctx := context.WithValue(r.Context(), ctxClaimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// currentUser returns the claims placed by requireAuth, or nil.
func currentUser(r *http.Request) *auth.Claims {
	c, _ := r.Context().Value(ctxClaimsKey{}).(*auth.Claims)
	return c
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRes struct {
	Token string `json:"token"`
}

// handleLogin exchanges email + password for a signed token. Every credential
// failure is a bare 401.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginReq
	if err := decodeBody(r, &body); err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	email := strings.TrimSpace(body.Email)
	if email == "" || body.Password == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	u, err := s.users.UserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		hlog.FromRequest(r).Error().Err(err).Msg("lookup user")
		writeInternal(w)
		return
	}
	if !auth.CheckPassword(u.PasswordHash, body.Password) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	tok, _, err := s.tokens.Issue(u.ID)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Int64("user", u.ID).Msg("issue token")
		writeInternal(w)
		return
	}
	writeJSON(w, http.StatusOK, loginRes{Token: tok})
}
