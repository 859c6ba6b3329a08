package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dropforge/internal/mint"
	"dropforge/internal/transport/http/shared"
	"dropforge/pkg/domain"
	dErrors "dropforge/pkg/domain-errors"
	"dropforge/pkg/requestcontext"
)

// MintHandler exposes the mint path and ownership queries.
type MintHandler struct {
	engine *mint.Engine
	logger *slog.Logger
}

func NewMintHandler(engine *mint.Engine, logger *slog.Logger) *MintHandler {
	return &MintHandler{engine: engine, logger: logger}
}

func (h *MintHandler) Register(r chi.Router) {
	r.Post("/drops/{id}/mint", h.handleMint)
	r.Get("/drops/{id}/owners/{ordinal}", h.handleOwnerOf)
	r.Get("/drops/{id}/wallets/{account}/count", h.handleWalletCount)
	r.Get("/wallets/{account}/drops", h.handleMintedDrops)
}

type mintRequest struct {
	Phase    domain.PhaseIndex `json:"phase"`
	Quantity uint64            `json:"quantity"`
	Payment  uint64            `json:"payment"`
	Proof    []domain.Hash     `json:"proof,omitempty"`
}

func (h *MintHandler) handleMint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseDropID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req mintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	receipt, err := h.engine.Mint(ctx, mint.Request{
		DropID:   id,
		Phase:    req.Phase,
		Quantity: req.Quantity,
		Payment:  req.Payment,
		Proof:    req.Proof,
		Minter:   requestcontext.Actor(ctx),
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, receipt)
}

func (h *MintHandler) handleOwnerOf(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseDropID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	ordinal, err := parseUint(chi.URLParam(r, "ordinal"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "ordinal must be a non-negative integer"))
		return
	}
	owner, err := h.engine.OwnerOf(r.Context(), id, ordinal)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"owner": owner})
}

func (h *MintHandler) handleWalletCount(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseDropID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	wallet, err := domain.ParseAccount(chi.URLParam(r, "account"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	count, err := h.engine.WalletMintCount(r.Context(), id, wallet)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"count": count})
}

func (h *MintHandler) handleMintedDrops(w http.ResponseWriter, r *http.Request) {
	wallet, err := domain.ParseAccount(chi.URLParam(r, "account"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	ids, err := h.engine.MintedDrops(r.Context(), wallet)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"drop_ids": ids})
}
