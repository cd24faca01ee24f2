package account

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/auth"
)

var validate = validator.New()

// Handler exposes HTTP endpoints for account CRUD.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(db *sqlx.DB, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: NewService(db), logger: logger}
}

func NewHandlerWithService(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// AccountRequest is the body for create and update.
type AccountRequest struct {
	Name     string `json:"name" validate:"required"`
	Type     string `json:"type" validate:"required"`
	Currency string `json:"currency"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	var req AccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if err := validate.Struct(req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	a, err := h.svc.Create(r.Context(), user.ID, req.Name, req.Type, req.Currency)
	if err != nil {
		if errors.Is(err, ErrInvalidType) {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid account type"})
			return
		}
		h.logger.Warnw("account create failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "account create failed"})
		return
	}
	h.writeJSON(w, http.StatusCreated, a)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	accounts, err := h.svc.List(r.Context(), user.ID)
	if err != nil {
		h.logger.Warnw("account list failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "account list failed"})
		return
	}
	h.writeJSON(w, http.StatusOK, accounts)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	a, err := h.svc.Get(r.Context(), r.PathValue("id"), user.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "account not found"})
			return
		}
		h.logger.Warnw("account get failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "account get failed"})
		return
	}
	h.writeJSON(w, http.StatusOK, a)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	var req AccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if err := validate.Struct(req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	a, err := h.svc.Update(r.Context(), r.PathValue("id"), user.ID, req.Name, req.Type, req.Currency)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidType):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid account type"})
		case errors.Is(err, ErrNotFound):
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "account not found"})
		default:
			h.logger.Warnw("account update failed", "err", err)
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "account update failed"})
		}
		return
	}
	h.writeJSON(w, http.StatusOK, a)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	if err := h.svc.Delete(r.Context(), r.PathValue("id"), user.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "account not found"})
			return
		}
		h.logger.Warnw("account delete failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "account delete failed"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Account deleted"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
