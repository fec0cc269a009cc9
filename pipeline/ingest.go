package pipeline

import (
	"context"
	"fmt"

	"github.com/tuffdb/tuff/domain"
	"github.com/tuffdb/tuff/engine"
)

// IngestOutcome is what one fragment's trip through the pipeline produced.
type IngestOutcome struct {
	Op             domain.OpLog
	Status         domain.VerificationStatus
	Confidence     float32
	EvidenceCount  int
	Reason         string
}

// Pipeline wires the four ingestion stages together against a TuffDb.
type Pipeline struct {
	Splitter  InputSplitter
	Fetcher   FactFetcher
	Verifier  ClaimVerifier
	Generator AbstractGenerator
	DB        engine.TuffDb
}

// Ingest splits input into fragments and, for each, fetches facts, verifies,
// generates an Abstract, and appends it, in that order. A failure at any
// stage for one fragment aborts the whole call: partial results up to that
// point are not returned, matching the original pipeline's fail-fast
// behavior (no per-fragment error recovery).
func (p *Pipeline) Ingest(ctx context.Context, input string) ([]IngestOutcome, error) {
	fragments := p.Splitter.Split(input)
	outcomes := make([]IngestOutcome, 0, len(fragments))

	for _, fragment := range fragments {
		facts, err := p.Fetcher.Fetch(ctx, fragment)
		if err != nil {
			return nil, fmt.Errorf("pipeline: fetch facts for %q: %w", fragment, err)
		}

		evidenceCount := 0
		for _, f := range facts {
			evidenceCount += len(f.Evidence)
		}

		result, err := p.Verifier.Verify(ctx, fragment, facts)
		if err != nil {
			return nil, fmt.Errorf("pipeline: verify %q: %w", fragment, err)
		}

		abstract, err := p.Generator.Generate(ctx, fragment, facts, result.Status)
		if err != nil {
			return nil, fmt.Errorf("pipeline: generate abstract for %q: %w", fragment, err)
		}

		op, err := p.DB.AppendAbstract(abstract)
		if err != nil {
			return nil, fmt.Errorf("pipeline: append abstract for %q: %w", fragment, err)
		}

		outcomes = append(outcomes, IngestOutcome{
			Op:            op,
			Status:        result.Status,
			Confidence:    result.Confidence,
			EvidenceCount: evidenceCount,
			Reason:        result.Reason,
		})
	}

	return outcomes, nil
}

// SelectAll returns every Abstract currently visible in the index.
func (p *Pipeline) SelectAll() []domain.Abstract {
	return p.DB.Select(domain.SelectQuery{})
}
