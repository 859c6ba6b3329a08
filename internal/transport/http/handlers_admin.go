package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dropforge/internal/activity"
	"dropforge/internal/bank"
	"dropforge/internal/platform/chain"
	"dropforge/internal/system"
	"dropforge/internal/transport/http/shared"
	"dropforge/pkg/domain"
	dErrors "dropforge/pkg/domain-errors"
	"dropforge/pkg/requestcontext"
)

// AdminHandler exposes operator endpoints: the global pause, the height
// counter, and the development bank faucet.
type AdminHandler struct {
	system   *system.Service
	heights  *chain.Counter
	bank     *bank.Service
	activity *activity.Publisher
	logger   *slog.Logger
}

func NewAdminHandler(sys *system.Service, heights *chain.Counter, bankSvc *bank.Service, publisher *activity.Publisher, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{system: sys, heights: heights, bank: bankSvc, activity: publisher, logger: logger}
}

func (h *AdminHandler) Register(r chi.Router) {
	r.Post("/admin/pause", h.handleSetPaused)
	r.Post("/admin/height", h.handleAdvanceHeight)
	r.Post("/bank/deposit", h.handleDeposit)
	r.Get("/bank/balance/{account}", h.handleBalance)
}

type pauseRequest struct {
	Paused bool `json:"paused"`
}

func (h *AdminHandler) handleSetPaused(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req pauseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	actor := requestcontext.Actor(ctx)
	if err := h.system.SetPaused(ctx, actor, req.Paused); err != nil {
		shared.WriteError(w, err)
		return
	}
	h.activity.EmitBestEffort(ctx, activity.Event{
		Action: activity.ActionLaunchpadPauseToggled,
		Height: chain.At(ctx, h.heights),
		Actor:  actor.String(),
		Paused: activity.BoolRef(req.Paused),
	})
	w.WriteHeader(http.StatusNoContent)
}

type advanceHeightRequest struct {
	Height uint64 `json:"height"`
}

func (h *AdminHandler) handleAdvanceHeight(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.system.RequireAdmin(requestcontext.Actor(ctx)); err != nil {
		shared.WriteError(w, err)
		return
	}
	var req advanceHeightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	height := h.heights.Advance(req.Height)
	shared.WriteJSON(w, http.StatusOK, map[string]any{"height": height})
}

type depositRequest struct {
	Account domain.Account `json:"account"`
	Amount  uint64         `json:"amount"`
}

func (h *AdminHandler) handleDeposit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.system.RequireAdmin(requestcontext.Actor(ctx)); err != nil {
		shared.WriteError(w, err)
		return
	}
	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	if req.Amount == 0 {
		shared.WriteError(w, dErrors.NewKind(dErrors.CodeInvalidInput, dErrors.KindZeroAmount, "deposit amount must be positive"))
		return
	}
	if err := h.bank.Deposit(ctx, req.Account, req.Amount); err != nil {
		shared.WriteError(w, dErrors.WrapKind(err, dErrors.CodeFailedPrecondition, dErrors.KindTransferFailed, "deposit failed"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) handleBalance(w http.ResponseWriter, r *http.Request) {
	account, err := domain.ParseAccount(chi.URLParam(r, "account"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"account": account,
		"balance": h.bank.Balance(r.Context(), account),
	})
}
