package historyhttp

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestServeShell(t *testing.T) {
	r := NewRouter(Config{OutDir: t.TempDir()})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestServeFileMissingIs404(t *testing.T) {
	r := NewRouter(Config{OutDir: t.TempDir()})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history/api/latest", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for a missing output file, got %d", rec.Code)
	}
}

func TestServeFilePresent(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "timeline.json"), []byte(`{"topics":[]}`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	r := NewRouter(Config{OutDir: dir})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history/api/timeline", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("expected a JSON content type, got %q", rec.Header().Get("Content-Type"))
	}
}

func TestBasicAuthRejectsWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	r := NewRouter(Config{OutDir: t.TempDir(), BasicAuthUser: "admin", BasicAuthHash: string(hash)})

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	req.SetBasicAuth("admin", "wrong-password")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a wrong password, got %d", rec.Code)
	}
}

func TestBasicAuthAcceptsCorrectPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	r := NewRouter(Config{OutDir: t.TempDir(), BasicAuthUser: "admin", BasicAuthHash: string(hash)})

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	req.SetBasicAuth("admin", "correct-horse")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for the correct password, got %d", rec.Code)
	}
}

func TestNoAuthWhenUnconfigured(t *testing.T) {
	r := NewRouter(Config{OutDir: t.TempDir()})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected no auth gate when BasicAuthUser/Hash are unset, got %d", rec.Code)
	}
}
