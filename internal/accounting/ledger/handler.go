package ledger

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ledgerdesk/ledgerdesk/internal/platform/httpx"
	"github.com/ledgerdesk/ledgerdesk/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
}

type entryRequest struct {
	AccountID uuid.UUID       `json:"accountId"`
	VoucherID *uuid.UUID      `json:"voucherId"`
	Type      TransactionType `json:"transactionType"`
	Amount    float64         `json:"amount"`
	Narration string          `json:"narration"`
	EntryDate *time.Time      `json:"entryDate"`
}

func parseUUID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, shared.NewValidationError("id")
	}
	return id, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var accountID *uuid.UUID
	if raw := r.URL.Query().Get("accountId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.RespondError(w, h.logger, shared.NewValidationError("accountId"))
			return
		}
		accountID = &id
	}
	from, err := parseDate(r, "from")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	to, err := parseDate(r, "to")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	entries, err := h.service.List(r.Context(), accountID, from, to)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "success", "entries": entries})
}

func parseDate(r *http.Request, key string) (*time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		t, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, shared.NewValidationError(key)
		}
	}
	return &t, nil
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	entry, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "success", "entry": entry})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	in := CreateInput{
		AccountID: req.AccountID,
		VoucherID: req.VoucherID,
		Type:      req.Type,
		Amount:    req.Amount,
		Narration: req.Narration,
	}
	if req.EntryDate != nil {
		in.EntryDate = *req.EntryDate
	}
	entry, err := h.service.Create(r.Context(), in)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"status": "success", "entry": entry})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "success", "message": "ledger entry deleted"})
}
