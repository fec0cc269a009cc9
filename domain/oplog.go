package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tuffdb/tuff/identity"
)

// OpKind discriminates the three shapes an OpLog entry can carry. Every
// write to the structured WAL is one of these.
type OpKind string

const (
	OpInsertAbstract  OpKind = "insert_abstract"
	OpInsertTransition OpKind = "insert_transition"
	OpAppendOverride  OpKind = "append_override"
)

// OpLog is one structured-WAL line: an operation envelope carrying exactly
// one of Abstract, Transition, or Override, discriminated by Kind.
type OpLog struct {
	OpId      identity.Id `json:"op_id"`
	Kind      OpKind      `json:"kind"`
	CreatedAt time.Time   `json:"created_at"`

	Abstract   *Abstract       `json:"abstract,omitempty"`
	Transition *Transition     `json:"transition,omitempty"`
	Override   *ManualOverride `json:"override,omitempty"`
}

// NewInsertAbstract builds an OpLog wrapping the given Abstract.
func NewInsertAbstract(a Abstract) OpLog {
	return OpLog{OpId: identity.New(), Kind: OpInsertAbstract, CreatedAt: time.Now().UTC(), Abstract: &a}
}

// NewInsertTransition builds an OpLog wrapping the given Transition.
func NewInsertTransition(t Transition) OpLog {
	return OpLog{OpId: identity.New(), Kind: OpInsertTransition, CreatedAt: time.Now().UTC(), Transition: &t}
}

// NewAppendOverride builds an OpLog wrapping the given ManualOverride.
func NewAppendOverride(o ManualOverride) OpLog {
	return OpLog{OpId: identity.New(), Kind: OpAppendOverride, CreatedAt: time.Now().UTC(), Override: &o}
}

// Validate checks that exactly the payload matching Kind is present. A line
// read back from disk that fails this is treated as structurally corrupt by
// callers, the same way an unparseable line is.
func (o OpLog) Validate() error {
	switch o.Kind {
	case OpInsertAbstract:
		if o.Abstract == nil {
			return fmt.Errorf("%w: insert_abstract missing abstract payload", ErrUnknownOpKind)
		}
	case OpInsertTransition:
		if o.Transition == nil {
			return fmt.Errorf("%w: insert_transition missing transition payload", ErrUnknownOpKind)
		}
	case OpAppendOverride:
		if o.Override == nil {
			return fmt.Errorf("%w: append_override missing override payload", ErrUnknownOpKind)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOpKind, o.Kind)
	}
	return nil
}

// ParseOpLog decodes one structured-WAL line into an OpLog and validates its
// shape.
func ParseOpLog(line []byte) (OpLog, error) {
	var op OpLog
	if err := json.Unmarshal(line, &op); err != nil {
		return OpLog{}, fmt.Errorf("domain: parse op log line: %w", err)
	}
	if err := op.Validate(); err != nil {
		return OpLog{}, err
	}
	return op, nil
}
