package engine

import (
	"path/filepath"
	"testing"

	"github.com/tuffdb/tuff/domain"
)

func TestAppendAbstractIsImmediatelyIndexed(t *testing.T) {
	e, err := New(filepath.Join(t.TempDir(), "test.wal"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer e.Close()

	a := domain.NewAbstract(domain.NewTopicId(), domain.NewTagGroupId(), []string{"x"}, "s")
	op, err := e.AppendAbstract(a)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if op.Kind != domain.OpInsertAbstract {
		t.Fatalf("unexpected op kind %q", op.Kind)
	}

	results := e.Select(domain.SelectQuery{})
	if len(results) != 1 || results[0].Id != a.Id {
		t.Fatal("expected the newly appended abstract to be visible immediately")
	}
}

func TestAppendTransitionAndOverrideAreNotIndexed(t *testing.T) {
	e, err := New(filepath.Join(t.TempDir(), "test.wal"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer e.Close()

	if _, err := e.AppendTransition(domain.Transition{Event: "moved"}); err != nil {
		t.Fatalf("append transition: %v", err)
	}
	if _, err := e.AppendOverride(domain.ManualOverride{}); err != nil {
		t.Fatalf("append override: %v", err)
	}

	if results := e.Select(domain.SelectQuery{}); len(results) != 0 {
		t.Fatalf("expected transitions/overrides to stay out of the abstract index, got %d", len(results))
	}
}

func TestFreshEngineStartsWithEmptyIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.wal")
	e1, err := New(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	a := domain.NewAbstract(domain.NewTopicId(), domain.NewTagGroupId(), []string{"x"}, "s")
	if _, err := e1.AppendAbstract(a); err != nil {
		t.Fatalf("append: %v", err)
	}
	e1.Close()

	e2, err := New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer e2.Close()
	if results := e2.Select(domain.SelectQuery{}); len(results) != 0 {
		t.Fatalf("expected a freshly opened Engine to start with an empty index, got %d", len(results))
	}
}
