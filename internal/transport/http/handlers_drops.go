package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dropforge/internal/drop"
	"dropforge/internal/transport/http/shared"
	"dropforge/pkg/domain"
	dErrors "dropforge/pkg/domain-errors"
	"dropforge/pkg/requestcontext"
)

// DropHandler exposes drop scheduling, configuration, and the per-drop phase
// registry.
type DropHandler struct {
	drops  *drop.Service
	logger *slog.Logger
}

func NewDropHandler(drops *drop.Service, logger *slog.Logger) *DropHandler {
	return &DropHandler{drops: drops, logger: logger}
}

func (h *DropHandler) Register(r chi.Router) {
	r.Post("/drops", h.handleSchedule)
	r.Get("/drops/{id}", h.handleGet)
	r.Put("/drops/{id}/content", h.handleUpdateContent)
	r.Put("/drops/{id}/label", h.handleSetLabel)
	r.Put("/drops/{id}/pause", h.handleSetPaused)
	r.Post("/drops/{id}/finalize", h.handleFinalize)

	r.Post("/drops/{id}/phases", h.handleAddPhase)
	r.Get("/drops/{id}/phases/{index}", h.handleGetPhase)
	r.Put("/drops/{id}/phases/{index}/bounds", h.handleUpdatePhaseBounds)
	r.Put("/drops/{id}/phases/{index}/root", h.handleSetAllowlistRoot)
	r.Put("/drops/{id}/phases/{index}/cap", h.handleSetPhaseCap)
}

type scheduleDropRequest struct {
	CreatorID    domain.CreatorID `json:"creator_id"`
	Content      domain.Hash      `json:"content"`
	MaxSupply    uint64           `json:"max_supply"`
	UnitPrice    uint64           `json:"unit_price"`
	FeeBps       uint32           `json:"fee_bps"`
	PerWalletCap uint64           `json:"per_wallet_cap"`
}

func (h *DropHandler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req scheduleDropRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	d, err := h.drops.Schedule(ctx, req.CreatorID, requestcontext.Actor(ctx),
		req.Content, req.MaxSupply, req.UnitPrice, req.FeeBps, req.PerWalletCap)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, d)
}

func (h *DropHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseDropID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	d, err := h.drops.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, d)
}

type fingerprintRequest struct {
	Fingerprint domain.Hash `json:"fingerprint"`
}

func (h *DropHandler) handleUpdateContent(w http.ResponseWriter, r *http.Request) {
	h.updateFingerprint(w, r, h.drops.UpdateContent)
}

func (h *DropHandler) handleSetLabel(w http.ResponseWriter, r *http.Request) {
	h.updateFingerprint(w, r, h.drops.SetLabel)
}

func (h *DropHandler) updateFingerprint(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, id domain.DropID, actor domain.Account, fp domain.Hash) error) {
	ctx := r.Context()
	id, err := domain.ParseDropID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req fingerprintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	if err := apply(ctx, id, requestcontext.Actor(ctx), req.Fingerprint); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setPausedRequest struct {
	Paused bool `json:"paused"`
}

func (h *DropHandler) handleSetPaused(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseDropID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req setPausedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	if err := h.drops.SetPaused(ctx, id, requestcontext.Actor(ctx), req.Paused); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DropHandler) handleFinalize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseDropID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.drops.Finalize(ctx, id, requestcontext.Actor(ctx)); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addPhaseRequest struct {
	StartHeight   uint64      `json:"start_height"`
	EndHeight     uint64      `json:"end_height"`
	AllowlistOnly bool        `json:"allowlist_only"`
	AllowlistRoot domain.Hash `json:"allowlist_root"`
}

func (h *DropHandler) handleAddPhase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseDropID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req addPhaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	index, err := h.drops.AddPhase(ctx, id, requestcontext.Actor(ctx),
		req.StartHeight, req.EndHeight, req.AllowlistOnly, req.AllowlistRoot)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, map[string]any{"phase": index})
}

func (h *DropHandler) handleGetPhase(w http.ResponseWriter, r *http.Request) {
	id, index, err := phaseParams(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	p, err := h.drops.GetPhase(r.Context(), id, index)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, p)
}

type phaseBoundsRequest struct {
	StartHeight uint64 `json:"start_height"`
	EndHeight   uint64 `json:"end_height"`
}

func (h *DropHandler) handleUpdatePhaseBounds(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, index, err := phaseParams(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req phaseBoundsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	if err := h.drops.UpdatePhaseBounds(ctx, id, index, requestcontext.Actor(ctx), req.StartHeight, req.EndHeight); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type allowlistRootRequest struct {
	AllowlistRoot domain.Hash `json:"allowlist_root"`
}

func (h *DropHandler) handleSetAllowlistRoot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, index, err := phaseParams(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req allowlistRootRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	if err := h.drops.SetAllowlistRoot(ctx, id, index, requestcontext.Actor(ctx), req.AllowlistRoot); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type phaseCapRequest struct {
	MintCap uint64 `json:"mint_cap"`
}

func (h *DropHandler) handleSetPhaseCap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, index, err := phaseParams(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req phaseCapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	if err := h.drops.SetPhaseCap(ctx, id, index, requestcontext.Actor(ctx), req.MintCap); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func phaseParams(r *http.Request) (domain.DropID, domain.PhaseIndex, error) {
	id, err := domain.ParseDropID(chi.URLParam(r, "id"))
	if err != nil {
		return 0, 0, err
	}
	index, err := domain.ParsePhaseIndex(chi.URLParam(r, "index"))
	if err != nil {
		return 0, 0, err
	}
	return id, index, nil
}
