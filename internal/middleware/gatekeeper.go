package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/spendwise/spendwise/internal/session"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

// ClaimsContextKey is the key used to store session claims in the request
// context.
const ClaimsContextKey contextKey = "claims"

// TokenBlacklist answers whether a token has been revoked by logout.
type TokenBlacklist interface {
	IsBlacklisted(ctx context.Context, token string) (bool, error)
}

// Gatekeeper decides, per request, whether to proceed, redirect to login, or
// reject. It only inspects the token; it never mutates state.
type Gatekeeper struct {
	sessions  *session.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger

	publicPaths    map[string]bool
	publicPrefixes []string
}

func NewGatekeeper(sessions *session.Manager, blacklist TokenBlacklist, logger *zap.Logger) *Gatekeeper {
	return &Gatekeeper{
		sessions:  sessions,
		blacklist: blacklist,
		logger:    logger,
		publicPaths: map[string]bool{
			"/":                true,
			"/login":           true,
			"/register":        true,
			"/forgot-password": true,
			"/healthz":         true,
		},
		publicPrefixes: []string{"/static/", "/favicon.ico"},
	}
}

func (g *Gatekeeper) hasPublicPrefix(path string) bool {
	for _, prefix := range g.publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// verify resolves the request token to claims, treating blacklisted tokens
// as invalid.
func (g *Gatekeeper) verify(r *http.Request) *session.Claims {
	token := session.FromRequest(r)
	if token == "" {
		return nil
	}
	if g.blacklist != nil {
		revoked, err := g.blacklist.IsBlacklisted(r.Context(), token)
		if err != nil {
			// Fail open: losing Redis must not log every user out.
			g.logger.Warn("blacklist lookup failed", zap.Error(err))
		} else if revoked {
			return nil
		}
	}
	claims, err := g.sessions.Verify(token)
	if err != nil {
		return nil
	}
	return claims
}

// Pages protects browser-facing routes. Unauthenticated requests to a
// protected path are redirected to /login with the original path preserved
// in the redirect query parameter; authenticated requests to a public path
// land on the dashboard.
func (g *Gatekeeper) Pages(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := g.verify(r)
		path := r.URL.Path

		// Assets are served regardless of authentication.
		if g.hasPublicPrefix(path) {
			next.ServeHTTP(w, r)
			return
		}

		if g.publicPaths[path] {
			// The root path always forwards somewhere sensible.
			if path == "/" {
				if claims != nil {
					http.Redirect(w, r, "/dashboard", http.StatusFound)
				} else {
					http.Redirect(w, r, "/login", http.StatusFound)
				}
				return
			}
			if claims != nil && path != "/healthz" {
				http.Redirect(w, r, "/dashboard", http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		if claims == nil {
			http.Redirect(w, r, "/login?redirect="+url.QueryEscape(path), http.StatusFound)
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// API protects JSON routes. A redirect is wrong for XHR callers, so invalid
// or missing tokens get a 401 body instead.
func (g *Gatekeeper) API(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := g.verify(r)
		if claims == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"not authenticated"}`))
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetClaims extracts session claims from the request context.
func GetClaims(ctx context.Context) (*session.Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*session.Claims)
	return claims, ok
}
