// Command tuffd runs the tuff service: the structured-WAL engine, the
// ingestion pipeline, the streaming session server, the history HTTP
// surface, and the lightweight tagged-payload TCP server, all against one
// durable store.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/tuffdb/tuff/config"
	"github.com/tuffdb/tuff/engine"
	"github.com/tuffdb/tuff/evidence"
	"github.com/tuffdb/tuff/gap"
	"github.com/tuffdb/tuff/historyhttp"
	"github.com/tuffdb/tuff/identity"
	"github.com/tuffdb/tuff/lightweight"
	"github.com/tuffdb/tuff/meaning"
	"github.com/tuffdb/tuff/pipeline"
	"github.com/tuffdb/tuff/session"
	"github.com/tuffdb/tuff/tagwal"
)

func main() {
	logLevel := env("LOG_LEVEL", "info")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(logLevel)}))
	slog.SetDefault(logger)

	cfg, err := config.Load(os.Getenv("TUFF_CONFIG_FILE"))
	if err != nil {
		slog.Error("config load", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	eng, err := engine.New(cfg.WALPath)
	if err != nil {
		slog.Error("engine open", "error", err)
		os.Exit(1)
	}
	defer eng.Close()

	var meaningDB *meaning.DB
	if cfg.LightweightMeaningPath != "" {
		meaningDB, err = meaning.LoadFile(cfg.LightweightMeaningPath)
		if err != nil {
			slog.Error("meaning db load", "error", err)
			os.Exit(1)
		}
	} else {
		meaningDB = meaning.NewDB(nil)
	}

	fetcher := evidence.New(evidence.Config{Timeout: cfg.FetchTimeout}, evidence.EnvTargetResolver(cfg.TargetURL))

	useLLM := config.ValidAPIKey(cfg.OpenAIAPIKey)
	var verifier pipeline.ClaimVerifier
	var generator pipeline.AbstractGenerator
	var gapResolver gap.Resolver
	if useLLM {
		verifier = pipeline.NewLLMVerifier(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		generator = pipeline.NewLLMAbstractGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		gapResolver = gap.NewLLMResolver(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		slog.Info("pipeline: using LLM verifier/generator/gap-resolver", "model", cfg.OpenAIModel)
	} else {
		verifier = pipeline.StubVerifier{}
		generator = pipeline.StubAbstractGenerator{}
		slog.Warn("OPENAI_API_KEY not set or looks like a placeholder, falling back to stub verifier/generator; gap resolution disabled")
	}

	pl := &pipeline.Pipeline{
		Splitter:  pipeline.StubSplitter{},
		Fetcher:   fetcher,
		Verifier:  verifier,
		Generator: generator,
		DB:        eng,
	}

	identity.Current() // touch once early so AI_ORIGIN is resolved before any write

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		sessSrv := &session.Server{
			Addr: cfg.SessionAddr,
			NewConfig: func() session.Config {
				sessCfg := session.Config{
					Pipeline:      pl,
					DB:            eng,
					GapResolver:   gapResolver,
					StopThreshold: cfg.StopConfidence,
					InternalState: cfg.InternalState,
					Logger:        logger,
				}
				if cfg.FastPathEnabled {
					sessCfg.MeaningDB = meaningDB
				}
				return sessCfg
			},
			Logger: logger,
		}
		slog.Info("session server starting", "addr", cfg.SessionAddr)
		if err := sessSrv.ListenAndServe(ctx); err != nil {
			slog.Error("session server", "error", err)
		}
	}()

	if cfg.LightweightAddr != "" {
		recoveryMode := tagwal.TruncateCorruptedTail
		if cfg.WALRecoveryStrict {
			recoveryMode = tagwal.Strict
		}
		tagStorePath := cfg.WALPath + ".tags"
		store, err := tagwal.OpenWithLogger(tagStorePath, recoveryMode, logger)
		if err != nil {
			slog.Error("tag store open", "error", err)
			os.Exit(1)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			lwSrv := &lightweight.Server{
				Addr:     cfg.LightweightAddr,
				Store:    store,
				Verifier: meaning.NewVerifier(meaningDB),
				Logger:   logger,
				Coalesce: cfg.LightweightCoalesce,
			}
			slog.Info("lightweight server starting", "addr", cfg.LightweightAddr)
			if err := lwSrv.ListenAndServe(ctx); err != nil {
				slog.Error("lightweight server", "error", err)
			}
		}()
	}

	if cfg.HistoryAddr != "" {
		router := historyhttp.NewRouter(historyhttp.Config{
			OutDir:        cfg.HistoryOutDir,
			BasicAuthUser: cfg.HistoryAuthUser,
			BasicAuthHash: cfg.HistoryAuthHash,
		})
		httpSrv := &http.Server{Addr: cfg.HistoryAddr, Handler: router}

		wg.Add(1)
		go func() {
			defer wg.Done()
			slog.Info("history http server starting", "addr", cfg.HistoryAddr)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("history http server", "error", err)
			}
		}()

		go func() {
			<-ctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			httpSrv.Shutdown(shutdownCtx)
		}()
	}

	<-ctx.Done()
	slog.Info("shutting down")
	wg.Wait()
	slog.Info("stopped")
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
