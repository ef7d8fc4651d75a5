package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spendwise/spendwise/internal/session"
)

type fakeBlacklist struct {
	revoked map[string]bool
	err     error
}

func (f *fakeBlacklist) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.revoked[token], nil
}

func testGatekeeper(t *testing.T) (*Gatekeeper, *session.Manager, *fakeBlacklist) {
	t.Helper()
	sessions, err := session.NewManager("gatekeeper-secret")
	require.NoError(t, err)
	blacklist := &fakeBlacklist{revoked: map[string]bool{}}
	return NewGatekeeper(sessions, blacklist, zap.NewNop()), sessions, blacklist
}

func okHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

func withToken(r *http.Request, token string) *http.Request {
	r.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	return r
}

func TestPages_ProtectedWithoutTokenRedirects(t *testing.T) {
	g, _, _ := testGatekeeper(t)
	next, called := okHandler()

	r := httptest.NewRequest("GET", "/history", nil)
	w := httptest.NewRecorder()
	g.Pages(next).ServeHTTP(w, r)

	require.False(t, *called)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/login?redirect=%2Fhistory", w.Header().Get("Location"))
}

func TestPages_ProtectedWithInvalidTokenRedirects(t *testing.T) {
	g, _, _ := testGatekeeper(t)
	next, called := okHandler()

	r := withToken(httptest.NewRequest("GET", "/history", nil), "garbage")
	w := httptest.NewRecorder()
	g.Pages(next).ServeHTTP(w, r)

	require.False(t, *called)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/login?redirect=%2Fhistory", w.Header().Get("Location"))
}

func TestPages_ProtectedWithValidTokenProceeds(t *testing.T) {
	g, sessions, _ := testGatekeeper(t)

	token, _, err := sessions.Issue("user-9")
	require.NoError(t, err)

	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetClaims(r.Context())
		require.True(t, ok)
		gotUserID = claims.UserID
	})

	r := withToken(httptest.NewRequest("GET", "/history", nil), token)
	w := httptest.NewRecorder()
	g.Pages(next).ServeHTTP(w, r)

	require.Equal(t, "user-9", gotUserID)
}

func TestPages_BlacklistedTokenRedirects(t *testing.T) {
	g, sessions, blacklist := testGatekeeper(t)
	next, called := okHandler()

	token, _, err := sessions.Issue("user-9")
	require.NoError(t, err)
	blacklist.revoked[token] = true

	r := withToken(httptest.NewRequest("GET", "/history", nil), token)
	w := httptest.NewRecorder()
	g.Pages(next).ServeHTTP(w, r)

	require.False(t, *called)
	require.Equal(t, http.StatusFound, w.Code)
}

func TestPages_PublicPaths(t *testing.T) {
	g, sessions, _ := testGatekeeper(t)

	t.Run("login page is public", func(t *testing.T) {
		next, called := okHandler()
		r := httptest.NewRequest("GET", "/login", nil)
		w := httptest.NewRecorder()
		g.Pages(next).ServeHTTP(w, r)
		require.True(t, *called)
	})

	t.Run("static prefix is public", func(t *testing.T) {
		next, called := okHandler()
		r := httptest.NewRequest("GET", "/static/app.css", nil)
		w := httptest.NewRecorder()
		g.Pages(next).ServeHTTP(w, r)
		require.True(t, *called)
	})

	t.Run("static prefix is served to authenticated users", func(t *testing.T) {
		token, _, err := sessions.Issue("user-9")
		require.NoError(t, err)
		next, called := okHandler()
		r := withToken(httptest.NewRequest("GET", "/static/app.css", nil), token)
		w := httptest.NewRecorder()
		g.Pages(next).ServeHTTP(w, r)
		require.True(t, *called)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("favicon is served to authenticated users", func(t *testing.T) {
		token, _, err := sessions.Issue("user-9")
		require.NoError(t, err)
		next, called := okHandler()
		r := withToken(httptest.NewRequest("GET", "/favicon.ico", nil), token)
		w := httptest.NewRecorder()
		g.Pages(next).ServeHTTP(w, r)
		require.True(t, *called)
	})

	t.Run("root without token goes to login", func(t *testing.T) {
		next, _ := okHandler()
		r := httptest.NewRequest("GET", "/", nil)
		w := httptest.NewRecorder()
		g.Pages(next).ServeHTTP(w, r)
		require.Equal(t, http.StatusFound, w.Code)
		require.Equal(t, "/login", w.Header().Get("Location"))
	})

	t.Run("root with token goes to dashboard", func(t *testing.T) {
		token, _, err := sessions.Issue("user-9")
		require.NoError(t, err)
		next, _ := okHandler()
		r := withToken(httptest.NewRequest("GET", "/", nil), token)
		w := httptest.NewRecorder()
		g.Pages(next).ServeHTTP(w, r)
		require.Equal(t, http.StatusFound, w.Code)
		require.Equal(t, "/dashboard", w.Header().Get("Location"))
	})

	t.Run("authenticated user skips the login page", func(t *testing.T) {
		token, _, err := sessions.Issue("user-9")
		require.NoError(t, err)
		next, called := okHandler()
		r := withToken(httptest.NewRequest("GET", "/login", nil), token)
		w := httptest.NewRecorder()
		g.Pages(next).ServeHTTP(w, r)
		require.False(t, *called)
		require.Equal(t, "/dashboard", w.Header().Get("Location"))
	})
}

func TestPages_BlacklistErrorFailsOpen(t *testing.T) {
	g, sessions, blacklist := testGatekeeper(t)

	token, _, err := sessions.Issue("user-9")
	require.NoError(t, err)
	blacklist.err = errors.New("connection refused")

	// A blacklist outage must not log everyone out; the token still
	// verifies on its signature.
	next, called := okHandler()
	r := withToken(httptest.NewRequest("GET", "/history", nil), token)
	w := httptest.NewRecorder()
	g.Pages(next).ServeHTTP(w, r)

	require.True(t, *called)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAPI_MissingOrInvalidTokenIs401(t *testing.T) {
	g, _, _ := testGatekeeper(t)
	next, called := okHandler()

	for _, r := range []*http.Request{
		httptest.NewRequest("GET", "/api/v1/expenses", nil),
		withToken(httptest.NewRequest("GET", "/api/v1/expenses", nil), "garbage"),
	} {
		w := httptest.NewRecorder()
		g.API(next).ServeHTTP(w, r)
		require.False(t, *called)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.JSONEq(t, `{"error":"not authenticated"}`, w.Body.String())
	}
}

func TestAPI_ValidTokenProceeds(t *testing.T) {
	g, sessions, _ := testGatekeeper(t)

	token, _, err := sessions.Issue("user-9")
	require.NoError(t, err)

	next, called := okHandler()
	r := withToken(httptest.NewRequest("GET", "/api/v1/expenses", nil), token)
	w := httptest.NewRecorder()
	g.API(next).ServeHTTP(w, r)

	require.True(t, *called)
	require.Equal(t, http.StatusOK, w.Code)
}
