package session

import "testing"

func TestJudgeResultFrameRoundTrip(t *testing.T) {
	payload := JudgeResultPayload{Status: "WHITE", Reason: "ok", Confidence: 0.9, Claim: "claim", EvidenceCount: 2}
	raw, err := judgeResultFrame("op-1", payload)
	if err != nil {
		t.Fatalf("judgeResultFrame: %v", err)
	}

	env, err := parseEnvelope(raw)
	if err != nil {
		t.Fatalf("parseEnvelope: %v", err)
	}
	if env.Type != TypeJudgeResult || env.Id != "op-1" {
		t.Fatalf("unexpected envelope: %+v", env)
	}

	var got JudgeResultPayload
	if err := unmarshalPayload(env.Payload, &got); err != nil {
		t.Fatalf("unmarshalPayload: %v", err)
	}
	if got != payload {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, payload)
	}
}

func TestControlCommandFrameRoundTrip(t *testing.T) {
	payload := ControlCommandPayload{Command: CommandStop, Trigger: TriggerSmokeDetected, Detail: "smoke detected"}
	raw, err := controlCommandFrame("op-2", payload)
	if err != nil {
		t.Fatalf("controlCommandFrame: %v", err)
	}

	env, err := parseEnvelope(raw)
	if err != nil {
		t.Fatalf("parseEnvelope: %v", err)
	}
	var got ControlCommandPayload
	if err := unmarshalPayload(env.Payload, &got); err != nil {
		t.Fatalf("unmarshalPayload: %v", err)
	}
	if got.Command != CommandStop || got.Trigger != TriggerSmokeDetected {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestParseEnvelopeRejectsGarbage(t *testing.T) {
	if _, err := parseEnvelope([]byte("not json")); err == nil {
		t.Fatal("expected an error parsing a malformed envelope")
	}
}
