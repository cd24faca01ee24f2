package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/auth/entity"
)

const (
	// LegacyCookieName is the JWT cookie the legacy system has always used.
	LegacyCookieName = "auth-token"
	// SessionCookieName carries the new system's session id.
	SessionCookieName = "fintrack.session_token"
)

// betterAuthCookieNames lists every cookie the new system is known to set.
// Logout clears them all explicitly rather than guessing.
var betterAuthCookieNames = []string{
	"fintrack.session_token",
	"fintrack.session_data",
	"fintrack.dont_remember",
}

var validate = validator.New()

// Handler exposes the HTTP auth endpoints (signup / login / me / logout).
type Handler struct {
	svc    *Service
	cfg    Config
	logger *zap.SugaredLogger
}

func NewHandler(db *sqlx.DB, cfg Config, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: NewService(db, cfg, logger), cfg: cfg, logger: logger}
}

func NewHandlerWithService(svc *Service, cfg Config, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, cfg: cfg, logger: logger}
}

// Service returns the underlying auth service for middleware wiring.
func (h *Handler) Service() *Service { return h.svc }

// SignupRequest request body for the signup endpoint.
type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if err := validate.Struct(req); err != nil {
		h.logger.Debugw("signup validation failed", "err", err)
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	out, err := h.svc.SignUp(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			h.writeJSON(w, http.StatusConflict, map[string]string{"error": "email already exists"})
			return
		}
		h.logger.Warnw("signup failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "signup failed"})
		return
	}
	h.setAuthCookies(w, out.SessionID, out.LegacyToken)
	h.writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Account created",
		"user":    out.User,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if err := validate.Struct(req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	out, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Authentication failed"})
			return
		}
		h.logger.Warnw("login failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "login failed"})
		return
	}
	h.setAuthCookies(w, out.SessionID, out.LegacyToken)
	resp := map[string]any{
		"message": "Logged in",
		"user":    out.User,
	}
	if out.Migrated {
		resp["migrated"] = true
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ac := h.svc.GetAuthContext(r.Context(), cookieValue(r, SessionCookieName), cookieValue(r, LegacyCookieName))
	if !ac.IsAuthenticated {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"user":       ac.User,
		"authType":   ac.AuthType,
		"isMigrated": ac.User.IsMigrated,
	})
}

// Logout clears both credential systems' cookies and always reports success,
// even when the session delete fails.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.svc.Logout(r.Context(), cookieValue(r, SessionCookieName))
	h.clearAuthCookies(w)
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (h *Handler) setAuthCookies(w http.ResponseWriter, sessionID, legacyToken string) {
	if sessionID != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookieName,
			Value:    sessionID,
			Path:     "/",
			MaxAge:   int(h.cfg.SessionTTL.Seconds()),
			HttpOnly: true,
			Secure:   h.cfg.SecureCookies,
			SameSite: http.SameSiteLaxMode,
		})
	}
	if legacyToken != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     LegacyCookieName,
			Value:    legacyToken,
			Path:     "/",
			MaxAge:   int(h.cfg.LegacyTokenTTL.Seconds()),
			HttpOnly: true,
			Secure:   h.cfg.SecureCookies,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func (h *Handler) clearAuthCookies(w http.ResponseWriter) {
	names := append([]string{LegacyCookieName}, betterAuthCookieNames...)
	for _, name := range names {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.cfg.SecureCookies,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// keep the tagged union import in one place for handler responses
var _ = entity.AuthTypeNone
