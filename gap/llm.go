package gap

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/tuffdb/tuff/domain"
	"github.com/tuffdb/tuff/identity"
)

// LLMResolver asks an LLM to name the event that moved the world from
// internalState to what externalEvidence now shows.
type LLMResolver struct {
	client *openai.Client
	model  string
}

// NewLLMResolver builds an LLMResolver for the given API key and model.
func NewLLMResolver(apiKey, model string) *LLMResolver {
	config := openai.DefaultConfig(apiKey)
	if base := os.Getenv("OPENAI_API_BASE"); base != "" {
		config.BaseURL = base
	}
	return &LLMResolver{client: openai.NewClientWithConfig(config), model: model}
}

type llmGapResponse struct {
	EventName  string  `json:"event_name"`
	OccurredAt *string `json:"occurred_at"`
	FromState  string  `json:"from_state"`
	ToState    string  `json:"to_state"`
}

// Resolve returns nil (no error) whenever external_evidence is empty, or
// whenever the reasoner's reply is not well-formed JSON: both are
// legitimate "no transition found" outcomes, not failures. A
// non-ISO8601-parseable occurred_at is dropped silently while the
// transition itself is still emitted.
func (r *LLMResolver) Resolve(ctx context.Context, claim domain.Claim, internalState string, externalEvidence []domain.Evidence) (*domain.Transition, error) {
	if len(externalEvidence) == 0 {
		return nil, nil
	}

	var lines []string
	for _, e := range externalEvidence {
		lines = append(lines, truncateRunes(e.Snippet, 200))
	}
	evidenceText := strings.Join(lines, "\n")

	systemPrompt := "You are a Historian AI.\n" +
		"Identify the EVENT that caused a change from the Internal State to the External Evidence.\n" +
		`Output JSON only: { "event_name": string, "occurred_at": string(ISO8601 or null), "from_state": string, "to_state": string }`
	userPrompt := fmt.Sprintf("Internal State: %s\nExternal Evidence: %s\nClaim: %s\n\nWhat event connects these states?",
		internalState, evidenceText, claim.Statement)

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gap: llm resolve: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("gap: llm resolve: response missing content")
	}
	content := resp.Choices[0].Message.Content

	var parsed llmGapResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, nil
	}

	var occurredAt *time.Time
	if parsed.OccurredAt != nil {
		if t, err := time.Parse(time.RFC3339, *parsed.OccurredAt); err == nil {
			occurredAt = &t
		}
	}

	evidenceIDs := make([]identity.Id, 0, len(externalEvidence))
	for _, e := range externalEvidence {
		evidenceIDs = append(evidenceIDs, e.EvidenceId)
	}

	return &domain.Transition{
		TransitionId: identity.New(),
		ObservedAt:   time.Now().UTC(),
		Agent:        identity.Current(),
		FromState:    parsed.FromState,
		ToState:      parsed.ToState,
		Event:        parsed.EventName,
		OccurredAt:   occurredAt,
		EvidenceIds:  evidenceIDs,
	}, nil
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
