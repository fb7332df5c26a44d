// internal/store/postgres/registry.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrUnknownQuery = errors.New("unknown query name")
)

// QueryFunc returns: data, rowCount, error. The generic entry point for
// operational tooling; the typed functions below are what the record
// store calls on the request path.
type QueryFunc func(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, error)

var Registry = map[string]QueryFunc{
	"education_programs": programsQuery,
	"course_pathways":    pathwaysQuery,
	"career_stats":       careersQuery,
	"collection_stats":   statsQuery,
}

func Execute(ctx context.Context, db *sql.DB, name string, params map[string]interface{}) (interface{}, int, error) {
	fn, exists := Registry[name]
	if !exists {
		return nil, 0, fmt.Errorf("%w: %s", ErrUnknownQuery, name)
	}
	return fn(ctx, db, params)
}

// likePatterns turns filter terms into ILIKE patterns. Empty input means
// no term filter, handled by the callers with a match-all statement.
func likePatterns(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t == "" {
			continue
		}
		out = append(out, "%"+t+"%")
	}
	return out
}

func paramTerms(params map[string]interface{}) []string {
	raw, ok := params["terms"].([]interface{})
	if !ok {
		if typed, ok := params["terms"].([]string); ok {
			return typed
		}
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func paramInt(params map[string]interface{}, key string, fallback int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return fallback
}
