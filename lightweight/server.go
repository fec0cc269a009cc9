// Package lightweight implements the tagged-payload TCP server: a raw,
// line-oriented protocol where each line is "tag<sep>payload" and every tag
// is checked against a meaning DB before its payload is durably recorded.
package lightweight

import (
	"bufio"
	"context"
	"log/slog"
	"net"
	"strings"

	"github.com/tuffdb/tuff/meaning"
	"github.com/tuffdb/tuff/tagwal"
)

// Server accepts connections and verifies/appends tagged lines.
type Server struct {
	Addr      string
	Store     *tagwal.Store
	Verifier  *meaning.Verifier
	Logger    *slog.Logger
	Coalesce  bool // enable the streaming-coalescing handler
}

// ListenAndServe blocks accepting connections until ctx is canceled or the
// listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		go s.handleConn(ctx, conn, logger)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn, logger *slog.Logger) {
	defer conn.Close()

	if s.Coalesce {
		s.handleCoalescing(ctx, conn, logger)
		return
	}

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Text()
		tag, payload, ok := splitLine(line)
		if !ok {
			continue
		}
		if !s.Verifier.VerifyOrDisconnect(tag, payload, conn) {
			return
		}
		if _, err := s.Store.Append(tag, payload); err != nil {
			logger.Error("lightweight: append failed", "err", err)
			return
		}
	}
}

// splitLine divides a raw line into (tag, payload) on the first tab, else
// the first space, else the whole line as tag with an empty payload.
func splitLine(line string) (tag, payload string, ok bool) {
	if line == "" {
		return "", "", false
	}
	if i := strings.IndexByte(line, '\t'); i >= 0 {
		return line[:i], line[i+1:], true
	}
	if i := strings.IndexByte(line, ' '); i >= 0 {
		return line[:i], line[i+1:], true
	}
	return line, "", true
}
