// Package walstruct implements the structured write-ahead log: one JSON
// object per line, append-only, flushed before the writer returns. It is the
// durability backbone the engine writes every operation through before the
// in-memory index is touched.
package walstruct

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tuffdb/tuff/domain"
)

// WAL is a single append-only structured log file. Safe for concurrent use;
// every Append is serialized through an internal mutex so line boundaries
// are never interleaved.
type WAL struct {
	mu   sync.Mutex
	path string
	file *os.File
}

// Open opens (creating if necessary) the structured WAL at path for
// appending.
func Open(path string) (*WAL, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("walstruct: mkdir %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("walstruct: open %s: %w", path, err)
	}
	return &WAL{path: path, file: f}, nil
}

// Append serializes op as one JSON line and flushes it to disk before
// returning. The in-memory index must only be updated after this returns
// without error, preserving the "write then index" ordering.
func (w *WAL) Append(op domain.OpLog) error {
	line, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("walstruct: marshal op %s: %w", op.OpId, err)
	}
	line = append(line, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.file.Write(line); err != nil {
		return fmt.Errorf("walstruct: write op %s: %w", op.OpId, err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("walstruct: sync op %s: %w", op.OpId, err)
	}
	return nil
}

// Close releases the underlying file handle.
func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

// Replay reads every well-formed line from path and invokes fn for each
// decoded OpLog in file order. Unparseable lines (malformed JSON or
// structurally invalid, e.g. a kind/payload mismatch) are skipped, not
// fatal: the structured WAL is consumed by tooling (the history compiler)
// that must keep going in the face of a single bad line.
func Replay(path string, fn func(domain.OpLog) error) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("walstruct: open %s for replay: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		op, err := domain.ParseOpLog(line)
		if err != nil {
			continue
		}
		if err := fn(op); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("walstruct: scan %s: %w", path, err)
	}
	return nil
}
