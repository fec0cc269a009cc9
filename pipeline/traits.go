// Package pipeline implements the staged ingestion pipeline: split input
// into fragments, fetch facts, verify each fragment against them, generate
// an Abstract, and persist it through the engine.
package pipeline

import (
	"context"

	"github.com/tuffdb/tuff/domain"
)

// VerificationResult is what a ClaimVerifier hands back for one fragment.
type VerificationResult struct {
	Status     domain.VerificationStatus
	Confidence float32
	Reason     string
}

// InputSplitter breaks a raw input string into fragments worth verifying
// independently. Pure and synchronous: splitting never does I/O.
type InputSplitter interface {
	Split(input string) []string
}

// FactFetcher gathers the RequiredFacts (and their backing Evidence) a
// fragment needs to be checked against. The concrete fetcher used in
// production is an external collaborator this package treats as opaque;
// evidence.Fetcher (see the evidence package) is the runnable default.
type FactFetcher interface {
	Fetch(ctx context.Context, fragment string) ([]domain.RequiredFact, error)
}

// ClaimVerifier grades a fragment given the facts fetched for it.
type ClaimVerifier interface {
	Verify(ctx context.Context, fragment string, facts []domain.RequiredFact) (VerificationResult, error)
}

// AbstractGenerator turns a verified fragment into a persistable Abstract.
type AbstractGenerator interface {
	Generate(ctx context.Context, fragment string, facts []domain.RequiredFact, status domain.VerificationStatus) (domain.Abstract, error)
}
