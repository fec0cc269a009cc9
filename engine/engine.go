// Package engine implements the TuffDb facade: the single serialization
// point through which every write reaches the structured WAL and, for
// Abstracts, the in-memory index.
package engine

import (
	"fmt"

	"github.com/tuffdb/tuff/domain"
	"github.com/tuffdb/tuff/identity"
	"github.com/tuffdb/tuff/index"
	"github.com/tuffdb/tuff/walstruct"
)

// TuffDb is the minimal surface the ingestion pipeline and streaming session
// need against durable storage.
type TuffDb interface {
	AppendAbstract(a domain.Abstract) (domain.OpLog, error)
	AppendTransition(t domain.Transition) (domain.OpLog, error)
	AppendOverride(o domain.ManualOverride) (domain.OpLog, error)
	Select(q domain.SelectQuery) []domain.Abstract
}

// Engine is the concrete TuffDb backed by a structured WAL and an in-memory
// index. Each Append* call writes the WAL and flushes before returning;
// AppendAbstract then updates the index synchronously, closing the window
// between durability and visibility within this process.
type Engine struct {
	wal   *walstruct.WAL
	index *index.Index
}

// New opens (or creates) the structured WAL at walPath and starts with an
// empty index: a freshly opened Engine does not replay history into the
// index by itself (see the compiler for that). Index visibility only
// accumulates from calls made against this Engine instance, for the
// lifetime of this process.
func New(walPath string) (*Engine, error) {
	w, err := walstruct.Open(walPath)
	if err != nil {
		return nil, fmt.Errorf("engine: open wal: %w", err)
	}
	return &Engine{wal: w, index: index.New()}, nil
}

// AppendAbstract writes a as an insert_abstract op, then inserts it into the
// index.
func (e *Engine) AppendAbstract(a domain.Abstract) (domain.OpLog, error) {
	op := domain.NewInsertAbstract(a)
	if err := e.wal.Append(op); err != nil {
		return domain.OpLog{}, fmt.Errorf("engine: append abstract: %w", err)
	}
	e.index.Insert(a)
	return op, nil
}

// AppendTransition stamps t with the current AgentIdentity and writes it as
// an insert_transition op. Transitions are not indexed: only Abstracts are.
func (e *Engine) AppendTransition(t domain.Transition) (domain.OpLog, error) {
	t.Agent = identity.Current()
	op := domain.NewInsertTransition(t)
	if err := e.wal.Append(op); err != nil {
		return domain.OpLog{}, fmt.Errorf("engine: append transition: %w", err)
	}
	return op, nil
}

// AppendOverride stamps o with the current AgentIdentity and writes it as an
// append_override op. Overrides are not indexed.
func (e *Engine) AppendOverride(o domain.ManualOverride) (domain.OpLog, error) {
	o.Agent = identity.Current()
	op := domain.NewAppendOverride(o)
	if err := e.wal.Append(op); err != nil {
		return domain.OpLog{}, fmt.Errorf("engine: append override: %w", err)
	}
	return op, nil
}

// Select delegates to the in-memory index.
func (e *Engine) Select(q domain.SelectQuery) []domain.Abstract {
	return e.index.Select(q)
}

// Close releases the underlying WAL file handle.
func (e *Engine) Close() error {
	return e.wal.Close()
}

var _ TuffDb = (*Engine)(nil)
