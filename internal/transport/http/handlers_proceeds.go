package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dropforge/internal/ledger"
	"dropforge/internal/transport/http/shared"
	"dropforge/pkg/domain"
	dErrors "dropforge/pkg/domain-errors"
	"dropforge/pkg/requestcontext"
)

// ProceedsHandler exposes the proceeds ledger.
type ProceedsHandler struct {
	ledger *ledger.Service
	logger *slog.Logger
}

func NewProceedsHandler(svc *ledger.Service, logger *slog.Logger) *ProceedsHandler {
	return &ProceedsHandler{ledger: svc, logger: logger}
}

func (h *ProceedsHandler) Register(r chi.Router) {
	r.Get("/drops/{id}/proceeds", h.handleBuckets)
	r.Post("/drops/{id}/proceeds/withdraw", h.handleWithdraw)
	r.Post("/proceeds/sweep", h.handleSweep)
}

func (h *ProceedsHandler) handleBuckets(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseDropID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	b, err := h.ledger.Buckets(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, b)
}

type withdrawRequest struct {
	Bucket string `json:"bucket"`
}

func (h *ProceedsHandler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseDropID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req withdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	kind, err := domain.ParseBucketKind(req.Bucket)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	amount, err := h.ledger.Withdraw(ctx, id, kind, requestcontext.Actor(ctx))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"amount": amount})
}

type sweepRequest struct {
	DropIDs []domain.DropID `json:"drop_ids"`
	Bucket  string          `json:"bucket"`
}

func (h *ProceedsHandler) handleSweep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req sweepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	kind, err := domain.ParseBucketKind(req.Bucket)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	total, err := h.ledger.BatchWithdraw(ctx, req.DropIDs, kind, requestcontext.Actor(ctx))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"amount": total, "drops": len(req.DropIDs)})
}
