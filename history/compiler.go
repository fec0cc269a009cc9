package history

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tuffdb/tuff/domain"
	"github.com/tuffdb/tuff/identity"
	"github.com/tuffdb/tuff/walstruct"
)

const (
	priorityIngest     = 1
	priorityTransition = 2
	priorityOverride   = 3
)

type rawEvent struct {
	topicID   string
	timestamp time.Time
	priority  int
	opIDRaw   string
	event     TimelineEvent
}

// Compile replays the structured WAL at walPath and writes latest_facts.json
// and timeline.json into outDir.
func Compile(walPath, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("history: mkdir %s: %w", outDir, err)
	}

	eventsByTopic := make(map[string][]rawEvent)
	abstractTopic := make(map[identity.Id]string)

	err := walstruct.Replay(walPath, func(op domain.OpLog) error {
		switch op.Kind {
		case domain.OpInsertAbstract:
			topicID := topicIDFromAbstract(*op.Abstract)
			abstractTopic[identity.Id(op.Abstract.Id)] = topicID
			raw := eventFromAbstract(op.OpId, op.CreatedAt, *op.Abstract, topicID)
			eventsByTopic[topicID] = append(eventsByTopic[topicID], raw)
		case domain.OpInsertTransition:
			topicID := topicIDFromTransition(*op.Transition)
			raw := eventFromTransition(op.OpId, op.CreatedAt, *op.Transition, topicID)
			eventsByTopic[topicID] = append(eventsByTopic[topicID], raw)
		case domain.OpAppendOverride:
			topicID := "override:unmapped"
			if op.Override.AbstractId != nil {
				if t, ok := abstractTopic[identity.Id(*op.Override.AbstractId)]; ok {
					topicID = t
				}
			}
			raw := eventFromOverride(op.OpId, op.CreatedAt, *op.Override, topicID)
			eventsByTopic[topicID] = append(eventsByTopic[topicID], raw)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("history: replay %s: %w", walPath, err)
	}

	var timelines []Timeline
	var latest []LatestFact
	now := time.Now().UTC().Format(time.RFC3339)

	for topicID, raws := range eventsByTopic {
		sort.Slice(raws, func(i, j int) bool {
			a, b := raws[i], raws[j]
			if !a.timestamp.Equal(b.timestamp) {
				return a.timestamp.Before(b.timestamp)
			}
			if a.priority != b.priority {
				return a.priority < b.priority
			}
			return a.opIDRaw < b.opIDRaw
		})

		var state *LatestFact
		events := make([]TimelineEvent, 0, len(raws))
		for _, raw := range raws {
			events = append(events, raw.event)
			state = stateFromEvent(topicID, raw.event)
		}

		timelines = append(timelines, Timeline{TopicId: topicID, Events: events})
		if state != nil {
			latest = append(latest, *state)
		}
	}

	latestFacts := LatestFacts{LastUpdated: now, Facts: latest}

	if err := writeJSON(filepath.Join(outDir, "latest_facts.json"), latestFacts); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(outDir, "timeline.json"), timelines); err != nil {
		return err
	}
	return nil
}

func topicIDFromAbstract(a domain.Abstract) string {
	key := a.Tags.ToKey()
	if key == "" {
		return "topic:" + shortID(identity.Id(a.TopicId))
	}
	return "tag:" + key
}

func topicIDFromTransition(t domain.Transition) string {
	base := t.FromState + "|" + t.ToState
	return "transition:" + shortHash(base)
}

func eventFromAbstract(opID identity.Id, ts time.Time, a domain.Abstract, topicID string) rawEvent {
	summary := a.Summary
	event := TimelineEvent{
		OpId:        opIDFmt(opID),
		Timestamp:   ts.Format(time.RFC3339),
		Type:        "INGEST",
		AgentOrigin: "UNKNOWN",
		StatusAfter: domain.StatusMapping(a.Verification),
		Reason:      &summary,
	}
	return rawEvent{
		topicID:   topicID,
		timestamp: ts,
		priority:  priorityIngest,
		opIDRaw:   simpleID(opID),
		event:     event,
	}
}

func eventFromTransition(opID identity.Id, ts time.Time, t domain.Transition, topicID string) rawEvent {
	evidenceIDs := make([]string, 0, len(t.EvidenceIds))
	for _, id := range t.EvidenceIds {
		evidenceIDs = append(evidenceIDs, "evd_"+shortID(id))
	}
	eventName := t.Event
	event := TimelineEvent{
		OpId:        opIDFmt(opID),
		Timestamp:   ts.Format(time.RFC3339),
		Type:        "TRANSITION",
		AgentOrigin: t.Agent.Origin,
		// The upstream compiler hardcodes "SMOKE" here for every transition;
		// preserved rather than invented, since transitions carry no
		// verification grade of their own to report instead.
		StatusAfter: "SMOKE",
		EvidenceIds: evidenceIDs,
		Reason:      &eventName,
	}
	return rawEvent{
		topicID:   topicID,
		timestamp: ts,
		priority:  priorityTransition,
		opIDRaw:   simpleID(opID),
		event:     event,
	}
}

func eventFromOverride(opID identity.Id, ts time.Time, o domain.ManualOverride, topicID string) rawEvent {
	overrideID := "ovr_" + shortID(o.OverrideId)
	event := TimelineEvent{
		OpId:        opIDFmt(opID),
		Timestamp:   ts.Format(time.RFC3339),
		Type:        "OVERRIDE",
		AgentOrigin: o.Agent.Origin,
		StatusAfter: "OVERRIDDEN",
		OverrideId:  &overrideID,
		UserNote:    o.Note,
	}
	return rawEvent{
		topicID:   topicID,
		timestamp: ts,
		priority:  priorityOverride,
		opIDRaw:   simpleID(opID),
		event:     event,
	}
}

func stateFromEvent(topicID string, event TimelineEvent) *LatestFact {
	currentValue := "(unknown)"
	if event.Reason != nil {
		currentValue = *event.Reason
	}
	return &LatestFact{
		TopicId:           topicID,
		Subject:           event.Type,
		CurrentValue:      currentValue,
		Status:            event.StatusAfter,
		Confidence:        0.0,
		ConfidenceKind:    "UNKNOWN",
		AgentOrigin:       event.AgentOrigin,
		SourceOpId:        event.OpId,
		LastEventTs:       event.Timestamp,
		IsHumanOverridden: event.Type == "OVERRIDE",
	}
}

func opIDFmt(id identity.Id) string {
	return "op_" + shortID(id)
}

func simpleID(id identity.Id) string {
	return strings.ReplaceAll(id.String(), "-", "")
}

func shortID(id identity.Id) string {
	s := simpleID(id)
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

func shortHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:8]
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("history: create %s: %w", path, err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("history: write %s: %w", path, err)
	}
	return nil
}
