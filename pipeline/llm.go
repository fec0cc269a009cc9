package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/tuffdb/tuff/domain"
)

func newOpenAIClient(apiKey string) *openai.Client {
	config := openai.DefaultConfig(apiKey)
	if base := os.Getenv("OPENAI_API_BASE"); base != "" {
		config.BaseURL = base
	}
	return openai.NewClientWithConfig(config)
}

func clampF32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func confidenceAdjust(confLLM float32, evidenceCount int) float32 {
	factor := clampF32(float32(evidenceCount)/3.0, 0.4, 1.0)
	return clampF32(confLLM*factor, 0.0, 1.0)
}

func summarizeReasoning(raw string) string {
	trimmed := strings.TrimSpace(strings.ReplaceAll(raw, "\n", " "))
	runes := []rune(trimmed)
	if len(runes) <= 120 {
		return trimmed
	}
	return string(runes[:120]) + "..."
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// LLMVerifier grades a fragment against its fetched evidence using an LLM.
type LLMVerifier struct {
	client *openai.Client
	model  string
}

// NewLLMVerifier builds an LLMVerifier for the given API key and model.
func NewLLMVerifier(apiKey, model string) *LLMVerifier {
	return &LLMVerifier{client: newOpenAIClient(apiKey), model: model}
}

type llmVerifyResponse struct {
	Status     string  `json:"status"`
	Confidence float32 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

func (v *LLMVerifier) Verify(ctx context.Context, fragment string, facts []domain.RequiredFact) (VerificationResult, error) {
	if len(facts) == 0 {
		return VerificationResult{Status: domain.GrayMid, Confidence: 0.4, Reason: "no evidence"}, nil
	}

	var blocks []string
	evidenceCount := 0
	for _, fact := range facts {
		for _, e := range fact.Evidence {
			snippet := truncateRunes(e.Snippet, 300)
			blocks = append(blocks, fmt.Sprintf("[URL: %s] [SHA256: %s]\n%s", e.Source.URL, e.Source.SHA256Hex, snippet))
			evidenceCount++
		}
	}
	evidenceText := "(no evidence snippets)"
	if len(blocks) > 0 {
		evidenceText = strings.Join(blocks, "\n\n")
	}

	systemPrompt := "You are a strict verification engine. Compare CLAIM to EVIDENCE only. " +
		"Output JSON with keys: status, confidence, reasoning. confidence is a number from 0 to 1. status must be one of SMOKE, GRAY_BLACK, GRAY_MID, GRAY_WHITE, WHITE. " +
		"SMOKE if evidence contradicts claim. WHITE if evidence supports claim. Use GRAY_* if insufficient."
	userPrompt := fmt.Sprintf("CLAIM:\n%s\n\nEVIDENCE:\n%s", fragment, evidenceText)

	resp, err := v.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: v.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return VerificationResult{}, fmt.Errorf("pipeline: llm verify: %w", err)
	}
	if len(resp.Choices) == 0 {
		return VerificationResult{}, fmt.Errorf("pipeline: llm verify: response missing content")
	}
	content := resp.Choices[0].Message.Content

	var parsed llmVerifyResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		parsed = llmVerifyResponse{Status: "GRAY_MID", Confidence: 0.4, Reasoning: "Parse error: " + content}
	}

	status, err := domain.ParseVerificationStatus(parsed.Status)
	if err != nil {
		status = domain.GrayMid
	}
	confidence := confidenceAdjust(parsed.Confidence, evidenceCount)
	reason := summarizeReasoning(parsed.Reasoning)
	return VerificationResult{Status: status, Confidence: confidence, Reason: reason}, nil
}

// LLMAbstractGenerator asks an LLM to summarize a verified fragment and tag
// it.
type LLMAbstractGenerator struct {
	client *openai.Client
	model  string
}

// NewLLMAbstractGenerator builds an LLMAbstractGenerator.
func NewLLMAbstractGenerator(apiKey, model string) *LLMAbstractGenerator {
	return &LLMAbstractGenerator{client: newOpenAIClient(apiKey), model: model}
}

type llmAbstractResponse struct {
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

func normalizeTags(tags []string) []string {
	return domain.TagBits{Tags: tags}.Canonical().Tags
}

func (g *LLMAbstractGenerator) Generate(ctx context.Context, fragment string, facts []domain.RequiredFact, status domain.VerificationStatus) (domain.Abstract, error) {
	var blocks []string
	for _, fact := range facts {
		for _, e := range fact.Evidence {
			blocks = append(blocks, fmt.Sprintf("[URL: %s]\n%s", e.Source.URL, truncateRunes(e.Snippet, 400)))
		}
	}
	evidenceText := "(no evidence)"
	if len(blocks) > 0 {
		evidenceText = strings.Join(blocks, "\n\n")
	}

	systemPrompt := "Summarize the CLAIM given its verification STATUS and EVIDENCE. " +
		"Output JSON only: {\"summary\": string, \"tags\": [string]}."
	userPrompt := fmt.Sprintf("CLAIM:\n%s\n\nSTATUS:\n%s\n\nEVIDENCE:\n%s", fragment, status, evidenceText)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return domain.Abstract{}, fmt.Errorf("pipeline: llm generate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return domain.Abstract{}, fmt.Errorf("pipeline: llm generate: response missing content")
	}
	content := resp.Choices[0].Message.Content

	var parsed llmAbstractResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		parsed = llmAbstractResponse{
			Summary: "LLM parse error. Raw: " + truncateRunes(content, 80),
			Tags:    []string{"UNKNOWN"},
		}
	}

	a := domain.NewAbstract(domain.NewTopicId(), domain.NewTagGroupId(), normalizeTags(parsed.Tags), parsed.Summary)
	a.Verification = status
	return a, nil
}
