package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tuffdb/tuff/domain"
	"github.com/tuffdb/tuff/pipeline"
)

type fakeDB struct {
	mu          sync.Mutex
	abstracts   []domain.Abstract
	overrides   []domain.ManualOverride
	transitions []domain.Transition
}

func (f *fakeDB) AppendAbstract(a domain.Abstract) (domain.OpLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.abstracts = append(f.abstracts, a)
	return domain.NewInsertAbstract(a), nil
}

func (f *fakeDB) AppendTransition(t domain.Transition) (domain.OpLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transitions = append(f.transitions, t)
	return domain.NewInsertTransition(t), nil
}

func (f *fakeDB) AppendOverride(o domain.ManualOverride) (domain.OpLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overrides = append(f.overrides, o)
	return domain.NewAppendOverride(o), nil
}

func (f *fakeDB) Select(q domain.SelectQuery) []domain.Abstract {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Abstract(nil), f.abstracts...)
}

func (f *fakeDB) overrideCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.overrides)
}

type passthroughSplitter struct{}

func (passthroughSplitter) Split(input string) []string {
	if input == "" {
		return nil
	}
	return []string{input}
}

type stubFetcher struct{}

func (stubFetcher) Fetch(ctx context.Context, fragment string) ([]domain.RequiredFact, error) {
	return nil, nil
}

type fixedVerifier struct {
	status     domain.VerificationStatus
	confidence float32
}

func (v fixedVerifier) Verify(ctx context.Context, fragment string, facts []domain.RequiredFact) (pipeline.VerificationResult, error) {
	return pipeline.VerificationResult{Status: v.status, Confidence: v.confidence, Reason: "fixed"}, nil
}

type stubGenerator struct{}

func (stubGenerator) Generate(ctx context.Context, fragment string, facts []domain.RequiredFact, status domain.VerificationStatus) (domain.Abstract, error) {
	a := domain.NewAbstract(domain.NewTopicId(), domain.NewTagGroupId(), nil, fragment)
	a.Verification = status
	return a, nil
}

func newTestServer(t *testing.T, db *fakeDB, status domain.VerificationStatus, confidence, stopThreshold float32) *httptest.Server {
	t.Helper()
	cfg := Config{
		Pipeline: &pipeline.Pipeline{
			Splitter:  passthroughSplitter{},
			Fetcher:   stubFetcher{},
			Verifier:  fixedVerifier{status: status, confidence: confidence},
			Generator: stubGenerator{},
			DB:        db,
		},
		DB:            db,
		StopThreshold: stopThreshold,
	}

	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		sess := New(conn, cfg)
		// Not r.Context(): net/http cancels it as soon as this handler
		// returns, right after the upgrade.
		go sess.Run(context.Background())
	}))
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func TestSessionEmitsJudgeResultForFragment(t *testing.T) {
	db := &fakeDB{}
	server := newTestServer(t, db, domain.White, 0.9, 0.35)
	defer server.Close()

	conn := dial(t, server)
	defer conn.Close()

	frame, err := newEnvelope("c1", TypeStreamFragment, StreamFragmentPayload{Fragment: "the sky is blue"})
	if err != nil {
		t.Fatalf("build frame: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		t.Fatalf("write: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	env, err := parseEnvelope(raw)
	if err != nil {
		t.Fatalf("parse reply: %v", err)
	}
	if env.Type != TypeJudgeResult {
		t.Fatalf("expected a JudgeResult reply, got %q", env.Type)
	}
	var payload JudgeResultPayload
	if err := unmarshalPayload(env.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Status != statusToWire(domain.White) {
		t.Fatalf("expected status %q, got %q", statusToWire(domain.White), payload.Status)
	}
}

func TestSessionSendsStopOnSmoke(t *testing.T) {
	db := &fakeDB{}
	server := newTestServer(t, db, domain.Smoke, 0.9, 0.35)
	defer server.Close()

	conn := dial(t, server)
	defer conn.Close()

	frame, err := newEnvelope("c1", TypeStreamFragment, StreamFragmentPayload{Fragment: "this is false"})
	if err != nil {
		t.Fatalf("build frame: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		t.Fatalf("write: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	sawStop := false
	for i := 0; i < 2; i++ {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		env, err := parseEnvelope(raw)
		if err != nil {
			t.Fatalf("parse reply: %v", err)
		}
		if env.Type == TypeControlCommand {
			var payload ControlCommandPayload
			if err := unmarshalPayload(env.Payload, &payload); err != nil {
				t.Fatalf("unmarshal control payload: %v", err)
			}
			if payload.Command == CommandStop && payload.Trigger == TriggerSmokeDetected {
				sawStop = true
			}
		}
	}
	if !sawStop {
		t.Fatal("expected a Stop/SmokeDetected control command after a Smoke verdict")
	}
}

func TestSessionMalformedFrameGetsStopReply(t *testing.T) {
	db := &fakeDB{}
	server := newTestServer(t, db, domain.White, 0.9, 0.35)
	defer server.Close()

	conn := dial(t, server)
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	env, err := parseEnvelope(raw)
	if err != nil {
		t.Fatalf("parse reply: %v", err)
	}
	if env.Type != TypeControlCommand {
		t.Fatalf("expected a ControlCommand reply to a malformed frame, got %q", env.Type)
	}
}

func TestSessionAppliesManualOverride(t *testing.T) {
	db := &fakeDB{}
	server := newTestServer(t, db, domain.White, 0.9, 0.35)
	defer server.Close()

	conn := dial(t, server)
	defer conn.Close()

	note := "operator says continue"
	frame, err := newEnvelope("c1", TypeControlCommand, ControlCommandPayload{
		Command: CommandContinue,
		Trigger: TriggerManualOverride,
		Detail:  "resume",
		ManualOverride: &ManualOverrideMeta{
			Note: &note,
		},
	})
	if err != nil {
		t.Fatalf("build frame: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if db.overrideCount() > 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("expected a manual override to be appended to the DB")
}
