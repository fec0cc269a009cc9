package session

import (
	"encoding/json"
	"fmt"
	"time"
)

func newEnvelope(id string, msgType MessageType, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("session: marshal payload: %w", err)
	}
	env := Envelope{
		Id:      id,
		Ts:      time.Now().UTC().Format(time.RFC3339),
		Type:    msgType,
		Payload: raw,
	}
	out, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("session: marshal envelope: %w", err)
	}
	return out, nil
}

func judgeResultFrame(id string, payload JudgeResultPayload) ([]byte, error) {
	return newEnvelope(id, TypeJudgeResult, payload)
}

func controlCommandFrame(id string, payload ControlCommandPayload) ([]byte, error) {
	return newEnvelope(id, TypeControlCommand, payload)
}

func parseEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("session: parse envelope: %w", err)
	}
	return env, nil
}

func unmarshalPayload(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("session: parse payload: %w", err)
	}
	return nil
}
