package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dropforge/internal/creator"
	"dropforge/internal/system"
	"dropforge/internal/transport/http/shared"
	"dropforge/pkg/domain"
	dErrors "dropforge/pkg/domain-errors"
	"dropforge/pkg/requestcontext"
)

// CreatorHandler exposes the creator registry.
type CreatorHandler struct {
	creators *creator.Service
	drops    DropLister
	system   *system.Service
	logger   *slog.Logger
}

// DropLister is the one drop-registry query the creator routes need.
type DropLister interface {
	ListByCreator(ctx context.Context, creatorID domain.CreatorID) ([]domain.DropID, error)
}

func NewCreatorHandler(creators *creator.Service, drops DropLister, sys *system.Service, logger *slog.Logger) *CreatorHandler {
	return &CreatorHandler{creators: creators, drops: drops, system: sys, logger: logger}
}

func (h *CreatorHandler) Register(r chi.Router) {
	r.Post("/creators", h.handleRegister)
	r.Get("/creators/{id}", h.handleGet)
	r.Get("/creators", h.handleGetByAccount)
	r.Put("/creators/{id}/handle", h.handleUpdateHandle)
	r.Post("/creators/{id}/deactivate", h.handleDeactivate)
	r.Get("/creators/{id}/drops", h.handleListDrops)
}

type registerCreatorRequest struct {
	Handle domain.Hash `json:"handle"`
}

func (h *CreatorHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req registerCreatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	c, err := h.creators.Register(ctx, requestcontext.Actor(ctx), req.Handle)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, c)
}

func (h *CreatorHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseCreatorID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	c, err := h.creators.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, c)
}

func (h *CreatorHandler) handleGetByAccount(w http.ResponseWriter, r *http.Request) {
	account, err := domain.ParseAccount(r.URL.Query().Get("account"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	c, err := h.creators.GetByAccount(r.Context(), account)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, c)
}

type updateHandleRequest struct {
	Handle domain.Hash `json:"handle"`
}

func (h *CreatorHandler) handleUpdateHandle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseCreatorID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req updateHandleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	if err := h.creators.UpdateHandle(ctx, id, requestcontext.Actor(ctx), req.Handle); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CreatorHandler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.system.RequireAdmin(requestcontext.Actor(ctx)); err != nil {
		shared.WriteError(w, err)
		return
	}
	id, err := domain.ParseCreatorID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.creators.Deactivate(ctx, id); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CreatorHandler) handleListDrops(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseCreatorID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	ids, err := h.drops.ListByCreator(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"drop_ids": ids})
}
