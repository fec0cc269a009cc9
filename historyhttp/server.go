// Package historyhttp serves the two precomputed JSON documents the history
// compiler produces, plus a minimal static HTML shell. Deliberately thin:
// this surface never recomputes anything, it only serves what Compile
// already wrote to disk.
package historyhttp

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

// Config configures the history HTTP surface.
type Config struct {
	// OutDir is where latest_facts.json and timeline.json live.
	OutDir string
	// BasicAuthUser/BasicAuthHash enable HTTP Basic Auth when both are set.
	// BasicAuthHash is a bcrypt hash of the expected password.
	BasicAuthUser string
	BasicAuthHash string
}

// NewRouter builds the chi.Router serving /history, /history/api/latest,
// and /history/api/timeline.
func NewRouter(cfg Config) chi.Router {
	r := chi.NewRouter()
	if cfg.BasicAuthUser != "" && cfg.BasicAuthHash != "" {
		r.Use(basicAuth(cfg.BasicAuthUser, cfg.BasicAuthHash))
	}

	r.Get("/history", serveShell)
	r.Get("/history/api/latest", serveFile(&cfg, "latest_facts.json"))
	r.Get("/history/api/timeline", serveFile(&cfg, "timeline.json"))
	return r
}

func basicAuth(user, bcryptHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUser, gotPass, ok := r.BasicAuth()
			if !ok || gotUser != user || bcrypt.CompareHashAndPassword([]byte(bcryptHash), []byte(gotPass)) != nil {
				w.Header().Set("WWW-Authenticate", `Basic realm="tuff-history"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func serveFile(cfg *Config, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(cfg.OutDir, name)
		if _, err := os.Stat(path); err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, path)
	}
}

func serveShell(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(historyShellHTML))
}

const historyShellHTML = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>tuff history</title></head>
<body>
<h1>tuff history</h1>
<p>Latest facts: <a href="/history/api/latest">/history/api/latest</a></p>
<p>Timeline: <a href="/history/api/timeline">/history/api/timeline</a></p>
</body>
</html>`
