package domain

import "github.com/tuffdb/tuff/identity"

// SourceMeta records where a piece of evidence came from and a content hash
// so two fetches of the same URL can be compared without re-fetching.
type SourceMeta struct {
	URL             string `json:"url"`
	RetrievedAtRFC3339 string `json:"retrieved_at_rfc3339"`
	SHA256Hex       string `json:"sha256_hex"`
}

// Evidence is one snippet of externally-sourced text backing a RequiredFact.
type Evidence struct {
	EvidenceId identity.Id `json:"evidence_id"`
	Source     SourceMeta  `json:"source"`
	// Snippet is truncated to at most 1200 Unicode scalars before storage;
	// callers must not assume it is the whole source document.
	Snippet string `json:"snippet"`
}

// SourceRef is the lighter reference a Claim carries, without a content hash.
type SourceRef struct {
	URL                string `json:"url"`
	RetrievedAtRFC3339 string `json:"retrieved_at_rfc3339"`
}

// RequiredFact is one fact a FactFetcher produced for a fragment, with the
// evidence backing it.
type RequiredFact struct {
	Key      string     `json:"key"`
	Value    string      `json:"value"`
	Evidence []Evidence `json:"evidence"`
}

// Claim is the statement being checked against external evidence, plus the
// sources it is already known to cite (if any).
type Claim struct {
	Statement string      `json:"statement"`
	Sources   []SourceRef `json:"sources"`
}
