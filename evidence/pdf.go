package evidence

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// pdfToText pulls the raw per-page content streams out of a PDF and
// concatenates them. This is a best-effort text surface, not a layout-aware
// extraction: good enough to hand a verifier or abstractor something to
// read, which is all the evidence pipeline needs from it.
func pdfToText(body []byte) (string, error) {
	outDir, err := os.MkdirTemp("", "tuff-pdf-*")
	if err != nil {
		return "", fmt.Errorf("evidence: mkdtemp: %w", err)
	}
	defer os.RemoveAll(outDir)

	reader := bytes.NewReader(body)
	if err := api.ExtractContent(reader, outDir, "evidence", nil, nil); err != nil {
		return "", fmt.Errorf("evidence: extract pdf content: %w", err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return "", fmt.Errorf("evidence: read extracted content dir: %w", err)
	}

	var out bytes.Buffer
	for _, entry := range entries {
		data, err := os.ReadFile(filepath.Join(outDir, entry.Name()))
		if err != nil {
			continue
		}
		out.Write(data)
		out.WriteByte('\n')
	}
	return out.String(), nil
}
