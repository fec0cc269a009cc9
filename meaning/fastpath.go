package meaning

import "strings"

// Hit is a successful fast-path match: a fragment whose tag already has a
// known meaning satisfied by its own payload, letting the pipeline skip
// fetch/verify/generate entirely.
type Hit struct {
	Tag      string
	Required string
	Mode     MatchMode
}

// SplitFragment splits a fragment into (tag, payload): everything before the
// first tab, else everything before the first space, else the whole
// fragment as tag with an empty payload.
func SplitFragment(fragment string) (tag, payload string) {
	if i := strings.IndexByte(fragment, '\t'); i >= 0 {
		return fragment[:i], fragment[i+1:]
	}
	if i := strings.IndexByte(fragment, ' '); i >= 0 {
		return fragment[:i], fragment[i+1:]
	}
	return fragment, ""
}

// VerifyFragment splits fragment, normalizes its tag, and checks it against
// db. Returns a Hit only when the tag has a configured meaning AND the
// payload satisfies it under that tag's match mode; an unmapped tag or a
// mismatch both report no hit (the caller falls through to the full
// pipeline).
func VerifyFragment(db *DB, fragment string) (Hit, bool) {
	tag, payload := SplitFragment(fragment)
	normalizedTag, ok := NormalizeTagKey(tag)
	if !ok {
		return Hit{}, false
	}
	required, ok := db.MeaningFor(tag)
	if !ok {
		return Hit{}, false
	}
	mode := MatchModeForTag(normalizedTag)
	if !meaningMatches(mode, required, payload) {
		return Hit{}, false
	}
	return Hit{Tag: normalizedTag, Required: required, Mode: mode}, true
}
