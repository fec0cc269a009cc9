// Package identity holds the cross-cutting identifiers and agent provenance
// shared by every other package: the random opaque Id and the AgentIdentity
// that gets stamped onto transitions and overrides.
package identity

import (
	"fmt"

	"github.com/google/uuid"
)

// Id is a 128-bit random identifier rendered as a UUID's canonical hex form.
type Id uuid.UUID

// New mints a fresh, cryptographically random Id.
func New() Id {
	u, err := uuid.NewRandom()
	if err != nil {
		// crypto/rand is exhausted or unavailable: nothing downstream can
		// recover from this, so surface it the same way out-of-entropy
		// conditions are surfaced elsewhere in the ecosystem.
		panic("identity: crypto/rand failed: " + err.Error())
	}
	return Id(u)
}

// Nil is the zero Id, used to signal "not set" in optional fields.
var Nil Id

func (id Id) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether id is the zero value.
func (id Id) IsNil() bool {
	return id == Nil
}

// Parse validates and parses a canonical UUID string into an Id.
func Parse(s string) (Id, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("identity: invalid id %q: %w", s, err)
	}
	return Id(u), nil
}

// MarshalText implements encoding.TextMarshaler so Id serializes as a plain
// JSON string rather than a byte array.
func (id Id) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Id) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
