package similarity

// Index is an inverted token index over cache keys. It narrows similarity
// candidates to entries sharing at least one token with the query, instead
// of scanning every entry.
type Index struct {
	postings map[string]map[string]struct{}
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{postings: make(map[string]map[string]struct{})}
}

// Add records key under each token.
func (ix *Index) Add(key string, tokens []string) {
	for _, tok := range tokens {
		keys, ok := ix.postings[tok]
		if !ok {
			keys = make(map[string]struct{})
			ix.postings[tok] = keys
		}
		keys[key] = struct{}{}
	}
}

// Remove drops key from each token's posting list.
func (ix *Index) Remove(key string, tokens []string) {
	for _, tok := range tokens {
		keys, ok := ix.postings[tok]
		if !ok {
			continue
		}
		delete(keys, key)
		if len(keys) == 0 {
			delete(ix.postings, tok)
		}
	}
}

// Candidates returns the keys sharing at least one token with the query,
// mapped to their shared-token count. A nil result means no candidates.
func (ix *Index) Candidates(tokens []string) map[string]int {
	var overlap map[string]int
	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		for key := range ix.postings[tok] {
			if overlap == nil {
				overlap = make(map[string]int)
			}
			overlap[key]++
		}
	}
	return overlap
}

// TokenCount returns the number of distinct indexed tokens.
func (ix *Index) TokenCount() int {
	return len(ix.postings)
}
