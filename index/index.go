// Package index implements the in-memory secondary index the engine keeps
// over inserted Abstracts, keyed by canonical tag key.
package index

import (
	"sync"

	"github.com/tuffdb/tuff/domain"
)

// Index buckets Abstracts by domain.TagBits.ToKey(). Safe for concurrent use.
type Index struct {
	mu      sync.Mutex
	byTagKey map[string][]domain.Abstract
}

// New returns an empty Index.
func New() *Index {
	return &Index{byTagKey: make(map[string][]domain.Abstract)}
}

// Insert appends a to the bucket for its tag key.
func (idx *Index) Insert(a domain.Abstract) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	key := a.Tags.ToKey()
	idx.byTagKey[key] = append(idx.byTagKey[key], a)
}

// Select returns Abstracts matching query. A nil TagKey scans every bucket
// (in unspecified order across buckets); otherwise only the named bucket is
// read. MinVerification, if set, filters the result afterward.
func (idx *Index) Select(query domain.SelectQuery) []domain.Abstract {
	idx.mu.Lock()
	var results []domain.Abstract
	if query.TagKey != nil {
		results = append(results, idx.byTagKey[*query.TagKey]...)
	} else {
		for _, bucket := range idx.byTagKey {
			results = append(results, bucket...)
		}
	}
	idx.mu.Unlock()

	if query.MinVerification == nil {
		return results
	}
	min := *query.MinVerification
	filtered := results[:0]
	for _, a := range results {
		if a.Verification >= min {
			filtered = append(filtered, a)
		}
	}
	return filtered
}
