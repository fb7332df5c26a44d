// internal/advisory/cache/keys.go
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

const keyPrefix = "advisor"

// Namespaces for the two cached data classes.
const (
	NamespaceToolResults = "tool"
	NamespaceAnswers     = "answer"
)

// GenerateKey derives a deterministic cache key from a namespace, a
// parameter map and an optional coarse profile fingerprint. Map keys are
// sorted before hashing, so identical logical requests hash identically
// regardless of insertion order. An empty fingerprint lets identical
// queries from different users share a row; a non-empty one isolates them.
func GenerateKey(namespace string, params map[string]interface{}, fingerprint string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(canonical(params[k]))
		b.WriteByte(';')
	}
	if fingerprint != "" {
		b.WriteString("fp=")
		b.WriteString(fingerprint)
	}

	sum := sha256.Sum256([]byte(b.String()))
	return keyPrefix + ":" + namespace + ":" + hex.EncodeToString(sum[:16])
}

// canonical renders a param value order-independently: slices keep their
// order (it is meaningful for search terms), nested maps are sorted.
func canonical(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []string:
		return strings.Join(t, ",")
	case []interface{}:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = canonical(e)
		}
		return strings.Join(parts, ",")
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + canonical(t[k])
		}
		return "{" + strings.Join(parts, ";") + "}"
	default:
		return fmt.Sprintf("%v", t)
	}
}

func tagKey(tag string) string {
	return keyPrefix + ":tag:" + tag
}
