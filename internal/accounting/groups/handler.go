package groups

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
	r.Post("/bulk", h.createBulk)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type groupRequest struct {
	Name        string     `json:"name"`
	Type        GroupType  `json:"type"`
	ParentID    *uuid.UUID `json:"parentId"`
	Description string     `json:"description"`
}

type groupPatchRequest struct {
	Name        *string    `json:"name"`
	Type        *GroupType `json:"type"`
	ParentID    *uuid.UUID `json:"parentId"`
	Description *string    `json:"description"`
}

type bulkGroupRequest struct {
	Groups []groupRequest `json:"groups"`
}

func parseUUID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, shared.NewValidationError("id")
	}
	return id, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "success", "accountGroups": list})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	group, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "success", "accountGroup": group})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	group, err := h.service.Create(r.Context(), CreateInput{
		Name:        req.Name,
		Type:        req.Type,
		ParentID:    req.ParentID,
		Description: req.Description,
	})
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"status": "success", "accountGroup": group})
}

func (h *Handler) createBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkGroupRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	inputs := make([]CreateInput, 0, len(req.Groups))
	for _, g := range req.Groups {
		inputs = append(inputs, CreateInput{
			Name:        g.Name,
			Type:        g.Type,
			ParentID:    g.ParentID,
			Description: g.Description,
		})
	}
	created, err := h.service.CreateBulk(r.Context(), inputs)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"status": "success", "accountGroups": created})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	var req groupPatchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	group, err := h.service.Update(r.Context(), id, UpdateInput{
		Name:        req.Name,
		Type:        req.Type,
		ParentID:    req.ParentID,
		Description: req.Description,
	})
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "success", "accountGroup": group})
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
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "success", "message": "account group deleted"})
}
