package accounts

import (
	"log/slog"
	"net/http"

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
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type accountRequest struct {
	Name           string    `json:"name" validate:"required"`
	GroupID        uuid.UUID `json:"groupId" validate:"required"`
	OpeningBalance float64   `json:"openingBalance"`
	Description    string    `json:"description"`
}

type accountPatchRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func parseUUID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, shared.NewValidationError("id")
	}
	return id, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var groupID *uuid.UUID
	if raw := r.URL.Query().Get("groupId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.RespondError(w, h.logger, shared.NewValidationError("groupId"))
			return
		}
		groupID = &id
	}
	list, err := h.service.List(r.Context(), groupID)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "success", "accounts": list})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	account, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "success", "account": account})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	account, err := h.service.Create(r.Context(), CreateInput{
		Name:           req.Name,
		GroupID:        req.GroupID,
		OpeningBalance: req.OpeningBalance,
		Description:    req.Description,
	})
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"status": "success", "account": account})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	var req accountPatchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	account, err := h.service.Update(r.Context(), id, UpdateInput{Name: req.Name, Description: req.Description})
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "success", "account": account})
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
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "success", "message": "account deleted"})
}
