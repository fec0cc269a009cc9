// Package meaning implements tag-key normalization and the fast-path
// "meaning" check that lets the lightweight TCP surface reject a payload
// before it is ever appended to the log.
package meaning

import (
	"net"
	"strings"
)

// TagKeyMaxLen bounds a normalized tag key's length.
const TagKeyMaxLen = 64

// MatchMode selects how a payload is compared against a required meaning.
type MatchMode int

const (
	// Exact requires the trimmed payload to equal the trimmed requirement.
	Exact MatchMode = iota
	// Contains requires the payload to contain the requirement verbatim.
	Contains
)

// NormalizeTagKey lowercases input, collapses every run of non-alphanumeric
// characters to a single '-', trims leading/trailing '-', and truncates to
// TagKeyMaxLen runes (re-trimming '-' after truncation). Returns false if
// the result is empty.
func NormalizeTagKey(input string) (string, bool) {
	var b strings.Builder
	b.Grow(len(input))
	prevDash := false
	for _, r := range strings.ToLower(input) {
		if isASCIIAlnum(r) {
			b.WriteRune(r)
			prevDash = false
			continue
		}
		if !prevDash {
			b.WriteByte('-')
			prevDash = true
		}
	}

	normalized := strings.Trim(b.String(), "-")
	if normalized == "" {
		return "", false
	}

	shortened := []rune(normalized)
	if len(shortened) > TagKeyMaxLen {
		shortened = shortened[:TagKeyMaxLen]
	}
	result := strings.Trim(string(shortened), "-")
	if result == "" {
		return "", false
	}
	return result, true
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// MatchModeForTag decides how strictly a tag's meaning must match: tags that
// look like identifiers ("id", or ending/containing "-id") require an exact
// match; everything else only needs to contain the required text.
func MatchModeForTag(normalizedTag string) MatchMode {
	if normalizedTag == "id" || strings.HasSuffix(normalizedTag, "-id") || strings.Contains(normalizedTag, "-id-") {
		return Exact
	}
	return Contains
}

func meaningMatches(mode MatchMode, required, payload string) bool {
	switch mode {
	case Exact:
		return strings.TrimSpace(payload) == strings.TrimSpace(required)
	default:
		return strings.Contains(payload, required)
	}
}

// DB holds the set of required meanings a tag's payload must satisfy,
// keyed by normalized tag.
type DB struct {
	meanings map[string]string
}

// NewDB normalizes every raw tag key on insert; raw tags that normalize to
// nothing are dropped.
func NewDB(raw map[string]string) *DB {
	meanings := make(map[string]string, len(raw))
	for rawTag, meaning := range raw {
		if tag, ok := NormalizeTagKey(rawTag); ok {
			meanings[tag] = meaning
		}
	}
	return &DB{meanings: meanings}
}

// Merge layers other's meanings on top of d's, normalizing other's raw keys
// first. Where both define a meaning for the same normalized tag, other
// wins — later sources always override earlier ones.
func (d *DB) Merge(other map[string]string) {
	for rawTag, meaning := range other {
		if tag, ok := NormalizeTagKey(rawTag); ok {
			d.meanings[tag] = meaning
		}
	}
}

// MeaningFor returns the required meaning for tag, if any is configured.
func (d *DB) MeaningFor(tag string) (string, bool) {
	key, ok := NormalizeTagKey(tag)
	if !ok {
		return "", false
	}
	m, ok := d.meanings[key]
	return m, ok
}

// Verifier applies a DB's required meanings to TCP connections, closing any
// connection whose payload doesn't satisfy the configured meaning for its
// tag.
type Verifier struct {
	db *DB
}

// NewVerifier builds a Verifier over db.
func NewVerifier(db *DB) *Verifier {
	return &Verifier{db: db}
}

// VerifyOrDisconnect checks tag/payload against the meaning DB. An
// unnormalizable tag, or a tag whose configured meaning the payload fails
// to satisfy, closes conn and returns false. A tag with no configured
// meaning always passes.
func (v *Verifier) VerifyOrDisconnect(tag, payload string, conn net.Conn) bool {
	normalizedTag, ok := NormalizeTagKey(tag)
	if !ok {
		_ = conn.Close()
		return false
	}

	if required, ok := v.db.MeaningFor(tag); ok {
		mode := MatchModeForTag(normalizedTag)
		if !meaningMatches(mode, required, payload) {
			_ = conn.Close()
			return false
		}
	}
	return true
}
