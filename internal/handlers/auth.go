package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spendwise/spendwise/internal/auth"
	"github.com/spendwise/spendwise/internal/middleware"
	"github.com/spendwise/spendwise/internal/models"
	"github.com/spendwise/spendwise/internal/session"
)

// UserDirectory is the slice of the user store the auth endpoints need
// beyond the authenticator itself.
type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	RecordLoginAttempt(ctx context.Context, email string, success bool, ipAddress string) error
}

// TokenRevoker records a token as revoked until it would have expired.
type TokenRevoker interface {
	Add(ctx context.Context, token string, expiry time.Duration) error
}

// AuthHandler holds dependencies for the authentication endpoints.
type AuthHandler struct {
	auth     *auth.Authenticator
	sessions *session.Manager
	cookies  session.Cookies
	users    UserDirectory
	revoker  TokenRevoker
	logger   *zap.Logger
}

func NewAuthHandler(authenticator *auth.Authenticator, sessions *session.Manager, cookies session.Cookies, users UserDirectory, revoker TokenRevoker, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     authenticator,
		sessions: sessions,
		cookies:  cookies,
		users:    users,
		revoker:  revoker,
		logger:   logger,
	}
}

// Login validates credentials and sets the session cookie.
// POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if creds.Email != "" && !strings.Contains(creds.Email, "@") {
		writeError(w, http.StatusBadRequest, "invalid email address")
		return
	}

	result, err := h.auth.Login(r.Context(), creds.Email, creds.Password)

	// Best-effort audit row; a storage hiccup never changes the outcome.
	if auditErr := h.users.RecordLoginAttempt(r.Context(), creds.Email, err == nil, r.RemoteAddr); auditErr != nil {
		h.logger.Error("record login attempt", zap.Error(auditErr))
	}

	if err != nil {
		writeAuthError(w, err)
		return
	}

	h.cookies.Set(w, result.Token, result.ExpiresAt)
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": result.User})
}

// Logout revokes the presented token and clears the cookie. A request with
// no usable token still succeeds: the caller's goal state holds either way.
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := session.FromRequest(r)
	if token != "" {
		if claims, err := h.sessions.Verify(token); err == nil {
			remaining := time.Until(time.UnixMilli(claims.ExpiresAtMillis))
			if err := h.revoker.Add(r.Context(), token, remaining); err != nil {
				h.logger.Error("blacklist token", zap.Error(err))
			}
		}
	}

	h.cookies.Clear(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

// Session returns the current user for a verified token.
// GET /api/v1/auth/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		h.logger.Error("get user", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user.Summary()})
}

// Register creates a new user with a bcrypt-hashed password.
// POST /api/v1/users
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "invalid email address")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	existing, err := h.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		h.logger.Error("find user", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "email is already registered")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("hash password", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		h.logger.Error("create user", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"user": user.Summary()})
}
