// Package gap implements the gap resolver: an external reasoner that
// explains the transition between an internal-state baseline and freshly
// fetched evidence, when the two disagree.
package gap

import (
	"context"

	"github.com/tuffdb/tuff/domain"
)

// Resolver looks at a claim, the system's notion of internal state, and
// freshly fetched external evidence, and decides whether a Transition
// explains the gap between them.
type Resolver interface {
	Resolve(ctx context.Context, claim domain.Claim, internalState string, externalEvidence []domain.Evidence) (*domain.Transition, error)
}
