// Command historycompile replays a structured WAL into the two JSON
// documents the history HTTP surface serves: per-topic timelines and a
// latest-facts snapshot.
package main

import (
	"log/slog"
	"os"

	"github.com/tuffdb/tuff/history"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	walPath := env("TUFF_WAL_PATH", "_tuffdb/tuff.wal")
	outDir := env("TUFF_HISTORY_OUT", "_tuffdb/history")

	if err := history.Compile(walPath, outDir); err != nil {
		slog.Error("compile", "error", err)
		os.Exit(1)
	}
	slog.Info("history compiled", "wal", walPath, "out", outDir)
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
