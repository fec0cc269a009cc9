package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tuffdb/tuff/domain"
	"github.com/tuffdb/tuff/engine"
	"github.com/tuffdb/tuff/gap"
	"github.com/tuffdb/tuff/identity"
	"github.com/tuffdb/tuff/meaning"
	"github.com/tuffdb/tuff/pipeline"
)

// IngestTimeout bounds how long the worker waits on one fragment's full
// pipeline run before giving up on it silently.
const IngestTimeout = 3 * time.Second

// OutboundCapacity is the writer's bounded queue depth.
const OutboundCapacity = 256

// Config wires a Session's collaborators.
type Config struct {
	Pipeline      *pipeline.Pipeline
	DB            engine.TuffDb
	GapResolver   gap.Resolver // optional
	MeaningDB     *meaning.DB  // optional; nil disables the fast path
	StopThreshold float32      // default 0.35
	InternalState string       // baseline fed to the gap resolver
	Logger        *slog.Logger
}

func (c *Config) defaults() {
	if c.StopThreshold <= 0 {
		c.StopThreshold = 0.35
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Session owns one WebSocket connection and the three goroutines that drive
// it: reader, ingest worker, writer.
type Session struct {
	conn   *websocket.Conn
	cfg    Config
	latch  *latch
	outbox chan []byte
}

// New wraps an already-upgraded WebSocket connection.
func New(conn *websocket.Conn, cfg Config) *Session {
	cfg.defaults()
	return &Session{
		conn:   conn,
		cfg:    cfg,
		latch:  newLatch(),
		outbox: make(chan []byte, OutboundCapacity),
	}
}

// Run drives the session until the connection closes or ctx is canceled. It
// starts and supervises the reader, worker, and writer goroutines, and
// returns once all three have stopped.
func (s *Session) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{}, 3)

	go func() { defer func() { done <- struct{}{} }(); s.readLoop(ctx, cancel) }()
	go func() { defer func() { done <- struct{}{} }(); s.workerLoop(ctx) }()
	go func() { defer func() { done <- struct{}{} }(); s.writeLoop(ctx, cancel) }()

	<-done
	cancel()
	<-done
	<-done
}

func (s *Session) send(ctx context.Context, frame []byte) {
	select {
	case s.outbox <- frame:
	case <-ctx.Done():
	}
}

func (s *Session) readLoop(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()
	log := s.cfg.Logger.With("component", "session.reader")

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			log.Debug("connection closed", "err", err)
			return
		}

		env, err := parseEnvelope(raw)
		if err != nil {
			frame, ferr := controlCommandFrame("system", ControlCommandPayload{
				Command: CommandStop,
				Trigger: TriggerManualOverride,
				Detail:  "JSON parse error",
			})
			if ferr == nil {
				s.send(ctx, frame)
			}
			continue
		}

		switch env.Type {
		case TypeStreamFragment:
			var payload StreamFragmentPayload
			if err := unmarshalPayload(env.Payload, &payload); err != nil {
				log.Warn("malformed stream fragment payload", "err", err)
				continue
			}
			s.latch.Send(payload.Fragment)

		case TypeControlCommand:
			var payload ControlCommandPayload
			if err := unmarshalPayload(env.Payload, &payload); err != nil {
				log.Warn("malformed control command payload", "err", err)
				continue
			}
			if payload.Command == CommandContinue && payload.Trigger == TriggerManualOverride {
				s.applyManualOverride(payload.ManualOverride)
			}

		default:
			log.Debug("ignoring unknown message type", "type", env.Type)
		}

		if ctx.Err() != nil {
			return
		}
	}
}

func (s *Session) applyManualOverride(meta *ManualOverrideMeta) {
	note := "No reason provided"
	var conversationID *string
	var abstractID *domain.AbstractId

	if meta != nil {
		if meta.Note != nil && *meta.Note != "" {
			note = *meta.Note
		}
		conversationID = meta.ConversationId
		if meta.AbstractId != nil {
			if id, err := identity.Parse(*meta.AbstractId); err == nil {
				aid := domain.AbstractId(id)
				abstractID = &aid
			}
		}
	}

	override := domain.ManualOverride{
		OverrideId:     identity.New(),
		ObservedAt:     time.Now().UTC(),
		ConversationId: conversationID,
		AbstractId:     abstractID,
		Note:           &note,
	}
	if _, err := s.cfg.DB.AppendOverride(override); err != nil {
		s.cfg.Logger.Error("append manual override", "err", err)
	}
}

func (s *Session) workerLoop(ctx context.Context) {
	log := s.cfg.Logger.With("component", "session.worker")

	for {
		select {
		case <-ctx.Done():
			return
		case fragment := <-s.latch.C():
			s.handleFragment(ctx, fragment, log)
		}
	}
}

func (s *Session) handleFragment(ctx context.Context, fragment string, log *slog.Logger) {
	if s.cfg.MeaningDB != nil {
		if hit, ok := meaning.VerifyFragment(s.cfg.MeaningDB, fragment); ok {
			frame, err := judgeResultFrame("system", JudgeResultPayload{
				Status:        statusToWire(domain.White),
				Reason:        "fast-path hit: " + hit.Tag,
				Confidence:    1.0,
				Claim:         fragment,
				EvidenceCount: 0,
			})
			if err == nil {
				s.send(ctx, frame)
			}
			return
		}
	}

	ingestCtx, cancel := context.WithTimeout(ctx, IngestTimeout)
	outcomes, err := s.cfg.Pipeline.Ingest(ingestCtx, fragment)
	cancel()
	if err != nil {
		log.Warn("ingest failed", "err", err, "fragment", fragment)
		return
	}
	if len(outcomes) == 0 {
		return
	}
	outcome := outcomes[0]

	var abstractID *string
	if outcome.Op.Kind == domain.OpInsertAbstract && outcome.Op.Abstract != nil {
		id := outcome.Op.Abstract.Id.String()
		abstractID = &id
	}

	judgeFrame, err := judgeResultFrame(outcome.Op.OpId.String(), JudgeResultPayload{
		Status:        statusToWire(outcome.Status),
		Reason:        outcome.Reason,
		Confidence:    outcome.Confidence,
		Claim:         fragment,
		EvidenceCount: uint32(outcome.EvidenceCount),
		AbstractId:    abstractID,
	})
	if err == nil {
		s.send(ctx, judgeFrame)
	}

	s.applyStopPolicy(ctx, outcome)
	s.resolveGap(ctx, fragment, log)
}

func (s *Session) applyStopPolicy(ctx context.Context, outcome pipeline.IngestOutcome) {
	var trigger Trigger
	var detail string
	switch {
	case outcome.Status == domain.Smoke:
		trigger, detail = TriggerSmokeDetected, "Smoke detected"
	case outcome.Confidence < s.cfg.StopThreshold:
		trigger, detail = TriggerLowConfidence, "Low confidence"
	default:
		return
	}

	frame, err := controlCommandFrame("system", ControlCommandPayload{
		Command: CommandStop,
		Trigger: trigger,
		Detail:  detail,
	})
	if err == nil {
		s.send(ctx, frame)
	}
}

func (s *Session) resolveGap(ctx context.Context, fragment string, log *slog.Logger) {
	if s.cfg.GapResolver == nil {
		return
	}

	facts, err := s.cfg.Pipeline.Fetcher.Fetch(ctx, fragment)
	if err != nil {
		log.Warn("gap resolver: refetch failed", "err", err)
		return
	}
	var evidences []domain.Evidence
	for _, f := range facts {
		evidences = append(evidences, f.Evidence...)
	}

	claim := domain.Claim{Statement: fragment}
	transition, err := s.cfg.GapResolver.Resolve(ctx, claim, s.cfg.InternalState, evidences)
	if err != nil {
		log.Warn("gap resolver failed", "err", err)
		return
	}
	if transition == nil {
		return
	}
	if _, err := s.cfg.DB.AppendTransition(*transition); err != nil {
		log.Error("append transition", "err", err)
	}
}

func (s *Session) writeLoop(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case frame := <-s.outbox:
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				s.cfg.Logger.Debug("write failed", "err", err)
				return
			}
		}
	}
}
