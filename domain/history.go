package domain

import (
	"time"

	"github.com/tuffdb/tuff/identity"
)

// Transition records an external reasoner's account of how the world moved
// from one state to another, with the evidence that justified the call.
type Transition struct {
	TransitionId identity.Id           `json:"transition_id"`
	ObservedAt   time.Time             `json:"observed_at"`
	Agent        identity.AgentIdentity `json:"agent"`
	FromState    string                `json:"from_state"`
	ToState      string                `json:"to_state"`
	Event        string                `json:"event"`
	OccurredAt   *time.Time            `json:"occurred_at,omitempty"`
	EvidenceIds  []identity.Id          `json:"evidence_ids"`
}

// ManualOverride records a human decision to annotate or correct an
// Abstract, independent of the automated pipeline.
type ManualOverride struct {
	OverrideId     identity.Id            `json:"override_id"`
	ObservedAt     time.Time              `json:"observed_at"`
	Agent          identity.AgentIdentity `json:"agent"`
	ConversationId *string                `json:"conversation_id,omitempty"`
	AbstractId     *AbstractId            `json:"abstract_id,omitempty"`
	Note           *string                `json:"note,omitempty"`
}
