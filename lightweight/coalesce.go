package lightweight

import (
	"bufio"
	"context"
	"log/slog"
	"net"
	"strings"
)

// coalesceMaxRunes is the length at which a buffered same-tag run flushes
// even without hitting a sentence terminator.
const coalesceMaxRunes = 180

// sentenceTerminators ends a coalescing run early, on the theory that a
// complete sentence is a meaningful unit to persist even if more same-tag
// lines follow.
const sentenceTerminators = "。！？.!?"

// flushTags force-flush whatever is buffered before processing the line
// that carries them, since these tags mark a conversational turn boundary.
var flushTags = map[string]struct{}{
	"user":       {},
	"user-input": {},
	"input":      {},
}

func (s *Server) handleCoalescing(ctx context.Context, conn net.Conn, logger *slog.Logger) {
	scanner := bufio.NewScanner(conn)

	var bufTag string
	var buf strings.Builder

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		if s.Verifier.VerifyOrDisconnect(bufTag, buf.String(), conn) {
			if _, err := s.Store.Append(bufTag, buf.String()); err != nil {
				logger.Error("lightweight: append failed", "err", err)
			}
		}
		buf.Reset()
		bufTag = ""
	}

	for scanner.Scan() {
		line := scanner.Text()
		tag, payload, ok := splitLine(line)
		if !ok {
			continue
		}

		if _, forceFlush := flushTags[tag]; forceFlush {
			flush()
			if !s.Verifier.VerifyOrDisconnect(tag, payload, conn) {
				return
			}
			if _, err := s.Store.Append(tag, payload); err != nil {
				logger.Error("lightweight: append failed", "err", err)
				return
			}
			continue
		}

		if bufTag != "" && tag != bufTag {
			flush()
		}
		bufTag = tag
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(payload)

		if endsWithSentenceTerminator(payload) || len([]rune(buf.String())) >= coalesceMaxRunes {
			flush()
		}
	}
	flush()
}

func endsWithSentenceTerminator(s string) bool {
	if s == "" {
		return false
	}
	runes := []rune(s)
	last := runes[len(runes)-1]
	return strings.ContainsRune(sentenceTerminators, last)
}
