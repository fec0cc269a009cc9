package pipeline

import (
	"context"
	"strings"

	"github.com/tuffdb/tuff/domain"
)

// StubSplitter splits on newlines, trimming and dropping empty fragments.
// Used when no richer splitting strategy (sentence boundaries, paragraphing)
// is configured.
type StubSplitter struct{}

func (StubSplitter) Split(input string) []string {
	lines := strings.Split(input, "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// StubFetcher always returns a single fact with no evidence, for exercising
// the pipeline without a real evidence source.
type StubFetcher struct{}

func (StubFetcher) Fetch(ctx context.Context, fragment string) ([]domain.RequiredFact, error) {
	return []domain.RequiredFact{{Key: "stub", Value: fragment}}, nil
}

// StubVerifier grades GrayMid/0.4 when no facts are present, and White/0.8
// whenever any fact is present at all — even a fact with zero evidence, as
// here. This mirrors the upstream smoke-test verifier and is never the
// default when a real verifier is configured; kept because it can mask
// evidence-count-driven grading when used past its intended smoke-test
// role.
type StubVerifier struct{}

func (StubVerifier) Verify(ctx context.Context, fragment string, facts []domain.RequiredFact) (VerificationResult, error) {
	if len(facts) == 0 {
		return VerificationResult{Status: domain.GrayMid, Confidence: 0.4, Reason: "no evidence"}, nil
	}
	return VerificationResult{Status: domain.White, Confidence: 0.8, Reason: "stub verifier"}, nil
}

// StubAbstractGenerator always tags ["smoke", "sanity"] and summarizes with
// a fixed prefix, for exercising the pipeline end to end without an LLM.
type StubAbstractGenerator struct{}

func (StubAbstractGenerator) Generate(ctx context.Context, fragment string, facts []domain.RequiredFact, status domain.VerificationStatus) (domain.Abstract, error) {
	a := domain.NewAbstract(domain.NewTopicId(), domain.NewTagGroupId(), []string{"smoke", "sanity"}, "SMOKE: "+fragment)
	a.Verification = status
	return a, nil
}
