// Package session implements the bidirectional streaming session: a
// WebSocket connection backed by three cooperative goroutines (reader,
// ingest worker, writer) that turn StreamFragment messages into JudgeResult
// and ControlCommand replies while feeding the engine.
package session

import "encoding/json"

// MessageType discriminates the three message shapes the wire protocol
// carries.
type MessageType string

const (
	TypeStreamFragment MessageType = "StreamFragment"
	TypeJudgeResult    MessageType = "JudgeResult"
	TypeControlCommand MessageType = "ControlCommand"
)

// Command is one of the two control verbs a ControlCommand can carry.
type Command string

const (
	CommandStop     Command = "Stop"
	CommandContinue Command = "Continue"
)

// Trigger explains why a ControlCommand was sent.
type Trigger string

const (
	TriggerSmokeDetected  Trigger = "SmokeDetected"
	TriggerLowConfidence  Trigger = "LowConfidence"
	TriggerManualOverride Trigger = "ManualOverride"
)

// Envelope is the outer shape every message shares: an id, a timestamp, and
// a type-specific payload. Payload is decoded based on Type.
type Envelope struct {
	Id      string          `json:"id"`
	Ts      string          `json:"ts"`
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// StreamFragmentPayload is the payload of an inbound StreamFragment.
type StreamFragmentPayload struct {
	Fragment       string `json:"fragment"`
	ConversationId string `json:"conversation_id,omitempty"`
	SequenceNumber *int   `json:"sequence_number,omitempty"`
}

// JudgeResultPayload is the payload of an outbound JudgeResult.
type JudgeResultPayload struct {
	Status        string  `json:"status"`
	Reason        string  `json:"reason"`
	Confidence    float32 `json:"confidence"`
	Claim         string  `json:"claim"`
	EvidenceCount uint32  `json:"evidence_count"`
	AbstractId    *string `json:"abstract_id,omitempty"`
}

// ManualOverrideMeta is the optional manual-override metadata carried by a
// ControlCommand{Continue, ManualOverride}.
type ManualOverrideMeta struct {
	Note           *string `json:"note,omitempty"`
	ConversationId *string `json:"conversation_id,omitempty"`
	AbstractId     *string `json:"abstract_id,omitempty"`
}

// ControlCommandPayload is the payload of a ControlCommand in either
// direction.
type ControlCommandPayload struct {
	Command        Command              `json:"command"`
	Trigger        Trigger              `json:"trigger"`
	Detail         string               `json:"detail"`
	ManualOverride *ManualOverrideMeta  `json:"manual_override,omitempty"`
}
