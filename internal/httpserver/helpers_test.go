package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/sterry/blog-api/internal/auth"
	"github.com/sterry/blog-api/internal/store"
)

var testSecret = []byte("handler-test-secret")

type testEnv struct {
	srv    *Server
	mem    *store.Memory
	tokens *auth.Tokens
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mem := store.NewMemory()
	tokens := auth.NewTokens(testSecret, auth.DefaultTTL)
	srv := New(mem, mem, tokens, Options{Logger: zerolog.Nop()})
	return &testEnv{srv: srv, mem: mem, tokens: tokens}
}

// addUser stores a user with a bcrypt hash of password.
func (e *testEnv) addUser(t *testing.T, email, password string) int64 {
	t.Helper()
	h, err := auth.HashPassword(password)
	require.NoError(t, err)
	u, err := e.mem.CreateUser(context.Background(), email, h)
	require.NoError(t, err)
	return u.ID
}

func (e *testEnv) tokenFor(t *testing.T, userID int64) string {
	t.Helper()
	tok, _, err := e.tokens.Issue(userID)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return doRequest(t, e.srv, method, path, token, body)
}

func doRequest(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rdr *bytes.Reader
	switch b := body.(type) {
	case nil:
		rdr = bytes.NewReader(nil)
	case string:
		rdr = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// doForm sends form as an application/x-www-form-urlencoded body.
func (e *testEnv) doForm(t *testing.T, method, path, token string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return serve(e.srv, req)
}

func decodeResponse[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// signAt signs a token for userID as if it had been issued at iat.
func signAt(t *testing.T, secret []byte, userID int64, iat time.Time) string {
	t.Helper()
	claims := auth.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(iat.Add(auth.DefaultTTL)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return tok
}

func lastPathSegment(loc string) string {
	return loc[strings.LastIndex(loc, "/")+1:]
}

func newRawRequest(t *testing.T, method, path string, headers map[string]string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(`{}`))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}
