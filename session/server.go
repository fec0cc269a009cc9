package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The streaming session is a local bridge (127.0.0.1 by default, per the
	// external interface contract); a single fixed origin check would only
	// get in the way of the loopback clients this is built for.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server upgrades incoming HTTP connections on "/" to WebSocket sessions.
type Server struct {
	Addr      string
	NewConfig func() Config
	Logger    *slog.Logger
}

// ListenAndServe blocks serving WebSocket sessions until ctx is canceled or
// the listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", "err", err)
			return
		}
		sess := New(conn, s.NewConfig())
		go func() {
			defer conn.Close()
			// ctx is the server's own lifetime context, not the HTTP
			// request's: the request context is canceled as soon as this
			// handler returns, which happens immediately after the upgrade.
			sess.Run(ctx)
		}()
	})

	srv := &http.Server{Addr: s.Addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return srv.Close()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("session: listen %s: %w", s.Addr, err)
	}
}
