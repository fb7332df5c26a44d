// internal/advisory/cache/similarity.go
package cache

import (
	"sort"
	"strings"
	"sync"
	"unicode"
)

// The similarity index is logically distinct from the TTL-keyed exact
// store: its eviction is a shared-state mutation, so it is a
// mutex-guarded ring buffer with overwrite-oldest discipline rather than
// relying on lazy read-time expiry.
const defaultIndexCapacity = 256

// PopularQuery is one entry of the popularity ranking in Stats.
type PopularQuery struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

type indexEntry struct {
	text   string
	tokens []string
	key    string
	count  int
}

type similarityIndex struct {
	mu      sync.Mutex
	entries []indexEntry
	next    int
	cap     int
}

func newSimilarityIndex(capacity int) *similarityIndex {
	if capacity <= 0 {
		capacity = defaultIndexCapacity
	}
	return &similarityIndex{
		entries: make([]indexEntry, 0, capacity),
		cap:     capacity,
	}
}

// observe records a query text. An exact repeat bumps its popularity
// count (and refreshes the stored key when one is supplied); a new text
// overwrites the oldest slot once the buffer is full.
func (s *similarityIndex) observe(text, key string) {
	norm := normalizeTokens(text)
	if len(norm) == 0 {
		return
	}
	canon := strings.Join(norm, " ")

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if strings.Join(s.entries[i].tokens, " ") == canon {
			s.entries[i].count++
			if key != "" {
				s.entries[i].key = key
			}
			return
		}
	}

	entry := indexEntry{text: text, tokens: norm, key: key, count: 1}
	if len(s.entries) < s.cap {
		s.entries = append(s.entries, entry)
		return
	}
	s.entries[s.next] = entry
	s.next = (s.next + 1) % s.cap
}

// bestMatch returns the exact-cache key of the most similar recorded
// query (with a non-empty key) and its similarity in [0,1].
func (s *similarityIndex) bestMatch(text string) (string, float64) {
	norm := normalizeTokens(text)
	if len(norm) == 0 {
		return "", 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bestKey := ""
	bestSim := 0.0
	for i := range s.entries {
		if s.entries[i].key == "" {
			continue
		}
		sim := diceSimilarity(norm, s.entries[i].tokens)
		if sim > bestSim {
			bestSim = sim
			bestKey = s.entries[i].key
		}
	}
	return bestKey, bestSim
}

// popular returns the top-n recorded queries by observation count.
func (s *similarityIndex) popular(n int) []PopularQuery {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]PopularQuery, 0, len(s.entries))
	for i := range s.entries {
		out = append(out, PopularQuery{Query: s.entries[i].text, Count: s.entries[i].count})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// diceSimilarity is the token-set Dice coefficient: 2|A∩B| / (|A|+|B|),
// bounded in [0,1].
func diceSimilarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]bool, len(a))
	for _, t := range a {
		setA[t] = true
	}
	setB := make(map[string]bool, len(b))
	for _, t := range b {
		setB[t] = true
	}
	common := 0
	for t := range setA {
		if setB[t] {
			common++
		}
	}
	return 2 * float64(common) / float64(len(setA)+len(setB))
}

// normalizeTokens lower-cases, strips punctuation and singularizes so
// that trivial rephrasings ("programs" vs "program options") compare as
// near-duplicates.
func normalizeTokens(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, singularize(f))
	}
	return out
}

func singularize(token string) string {
	switch {
	case strings.HasSuffix(token, "ies") && len(token) > 4:
		return token[:len(token)-3] + "y"
	case strings.HasSuffix(token, "ss"), strings.HasSuffix(token, "us"), strings.HasSuffix(token, "is"):
		return token
	case strings.HasSuffix(token, "s") && len(token) > 3:
		return token[:len(token)-1]
	default:
		return token
	}
}
