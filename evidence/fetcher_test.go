package evidence

import "testing"

func TestIsPDF(t *testing.T) {
	if !isPDF("application/pdf") {
		t.Fatal("expected application/pdf to be recognized")
	}
	if !isPDF("Application/PDF; charset=binary") {
		t.Fatal("expected case-insensitive, parameterized content-type to be recognized")
	}
	if isPDF("text/html") {
		t.Fatal("expected text/html to not be recognized as PDF")
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("short", 100); got != "short" {
		t.Fatalf("expected unchanged string, got %q", got)
	}
	runes := []rune("日本語のテキスト")
	truncated := truncateRunes(string(runes), 3)
	if len([]rune(truncated)) != 3 {
		t.Fatalf("expected 3 runes, got %d", len([]rune(truncated)))
	}
}

func TestExtractTextHTMLFallback(t *testing.T) {
	html := "<html><body><p>Hello <b>world</b></p></body></html>"
	text, err := extractText("text/html; charset=utf-8", []byte(html), "https://example.com/")
	if err != nil {
		t.Fatalf("extractText: %v", err)
	}
	if text == "" {
		t.Fatal("expected non-empty extracted text")
	}
}
