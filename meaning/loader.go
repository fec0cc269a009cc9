package meaning

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadFile parses a meaning-DB file: one "tag = meaning" pair per line,
// blank lines and lines starting with '#' ignored. The format is
// deliberately not YAML/JSON so operators can hand-edit it without
// round-tripping through a serializer; no third-party parser in the
// retrieval pack targets this grammar, so this is plain bufio.Scanner.
func LoadFile(path string) (*DB, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("meaning: open %s: %w", path, err)
	}
	defer f.Close()

	raw := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.Index(line, "=")
		if idx < 0 {
			continue
		}
		tag := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		if tag == "" {
			continue
		}
		raw[tag] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("meaning: scan %s: %w", path, err)
	}
	return NewDB(raw), nil
}
