package activity

import (
	"time"

	"github.com/google/uuid"

	"dropforge/pkg/domain"
)

// Action names an externally observable operation. Indexers key off these
// values; treat them as a wire contract.
type Action string

const (
	ActionCreatorOnboarded   Action = "creator_onboarded"
	ActionHandleUpdated      Action = "handle_updated"
	ActionCreatorDeactivated Action = "creator_deactivated"

	ActionDropScheduled  Action = "drop_scheduled"
	ActionContentUpdated Action = "content_updated"
	ActionLabelUpdated   Action = "label_updated"
	ActionDropPaused     Action = "drop_paused"
	ActionDropFinalized  Action = "drop_finalized"

	ActionPhaseAdded         Action = "phase_added"
	ActionPhaseBoundsUpdated Action = "phase_bounds_updated"
	ActionAllowlistRootSet   Action = "allowlist_root_set"
	ActionPhaseCapSet        Action = "phase_cap_set"

	ActionMintExecuted      Action = "mint_executed"
	ActionProceedsWithdrawn Action = "proceeds_withdrawn"
	ActionProceedsSwept     Action = "proceeds_swept"

	ActionLaunchpadPauseToggled Action = "launchpad_pause_toggled"
)

// Event is emitted from domain logic for indexing and notification; nothing
// in the core consumes it back. Keep it transport-agnostic so stores and
// sinks can fan out. Zero-valued optional fields are omitted on the wire.
type Event struct {
	ID        uuid.UUID          `json:"id"`
	Action    Action             `json:"action"`
	Height    uint64             `json:"height"`
	Actor     string             `json:"actor,omitempty"`
	CreatorID domain.CreatorID   `json:"creator_id,omitempty"`
	DropID    domain.DropID      `json:"drop_id,omitempty"`
	Phase     *domain.PhaseIndex `json:"phase,omitempty"`

	Quantity  uint64 `json:"quantity,omitempty"`
	Amount    uint64 `json:"amount,omitempty"`
	Bucket    string `json:"bucket,omitempty"`
	Paused    *bool  `json:"paused,omitempty"`
	ByKeeper  bool   `json:"by_keeper,omitempty"`
	FirstUnit uint64 `json:"first_unit,omitempty"`

	ClientIP  string    `json:"client_ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	EmittedAt time.Time `json:"emitted_at"`
}

// PhaseRef is a convenience for populating the optional phase field.
func PhaseRef(p domain.PhaseIndex) *domain.PhaseIndex { return &p }

// BoolRef is a convenience for populating the optional paused field.
func BoolRef(b bool) *bool { return &b }
