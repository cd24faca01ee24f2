package transaction

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/auth"
)

var validate = validator.New()

// Handler exposes HTTP endpoints for recording and listing transactions.
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

// TransactionRequest is the body for creating a transaction. Amount is a
// decimal string ("42.50") to avoid float rounding on the wire.
type TransactionRequest struct {
	AccountID  string `json:"accountId" validate:"required"`
	Type       string `json:"type" validate:"required"`
	Amount     string `json:"amount" validate:"required"`
	Category   string `json:"category"`
	Note       string `json:"note"`
	OccurredAt string `json:"occurredAt"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	var req TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if err := validate.Struct(req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid amount"})
		return
	}
	var occurredAt time.Time
	if req.OccurredAt != "" {
		occurredAt, err = time.Parse(time.RFC3339, req.OccurredAt)
		if err != nil {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid occurredAt"})
			return
		}
	}
	t, err := h.svc.Create(r.Context(), user.ID, req.AccountID, req.Type, amount, req.Category, req.Note, occurredAt)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidType), errors.Is(err, ErrInvalidAmount):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, ErrAccountNotFound):
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "account not found"})
		default:
			h.logger.Warnw("transaction create failed", "err", err)
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "transaction create failed"})
		}
		return
	}
	h.writeJSON(w, http.StatusCreated, t)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	txs, err := h.svc.List(r.Context(), user.ID, r.URL.Query().Get("accountId"), limit)
	if err != nil {
		h.logger.Warnw("transaction list failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "transaction list failed"})
		return
	}
	h.writeJSON(w, http.StatusOK, txs)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	t, err := h.svc.Get(r.Context(), r.PathValue("id"), user.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "transaction not found"})
			return
		}
		h.logger.Warnw("transaction get failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "transaction get failed"})
		return
	}
	h.writeJSON(w, http.StatusOK, t)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	if err := h.svc.Delete(r.Context(), r.PathValue("id"), user.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "transaction not found"})
			return
		}
		h.logger.Warnw("transaction delete failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "transaction delete failed"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Transaction deleted"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
