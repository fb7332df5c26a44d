// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

// Builtin returns the compiled-in tool catalog. It mirrors the tools the
// planner emits and the gateway dispatches; a registry file on disk can
// override it for deployments that extend the workflow.
func Builtin() *ToolRegistry {
	return &ToolRegistry{
		Version: "1.0",
		Tools: []Tool{
			{
				Name:             "search_programs",
				DisplayName:      "Search Programs",
				Description:      "Keyword search over post-secondary program listings",
				Collection:       "education_programs",
				RecognizedParams: []string{"terms", "category", "ignoreProfile", "expandedTerms", "getAllMatches"},
				DefaultLimit:     10,
				MaxLimit:         100,
			},
			{
				Name:             "search_all_collections",
				DisplayName:      "Search All Collections",
				Description:      "Broad keyword search across all three record collections",
				Collection:       "*",
				RecognizedParams: []string{"terms", "ignoreProfile", "expandedTerms", "getAllMatches"},
				DefaultLimit:     10,
				MaxLimit:         100,
			},
			{
				Name:             "get_course_pathways",
				DisplayName:      "Get Course Pathways",
				Description:      "Secondary-school course sequences, optionally filtered by grade",
				Collection:       "course_pathways",
				RecognizedParams: []string{"terms", "gradeLevel", "ignoreProfile", "expandedTerms", "getAllMatches"},
				DefaultLimit:     10,
				MaxLimit:         100,
			},
			{
				Name:             "get_career_stats",
				DisplayName:      "Get Career Statistics",
				Description:      "Labor-market statistics records matching the given terms",
				Collection:       "career_stats",
				RecognizedParams: []string{"terms", "ignoreProfile", "getAllMatches"},
				DefaultLimit:     10,
				MaxLimit:         100,
			},
			{
				Name:             "get_collection_stats",
				DisplayName:      "Get Collection Statistics",
				Description:      "Record counts per collection; appended to every plan",
				Collection:       "*",
				RecognizedParams: []string{},
				DefaultLimit:     1,
				MaxLimit:         1,
			},
			{
				Name:             "recommend_programs",
				DisplayName:      "Recommend Programs",
				Description:      "Profile-weighted program recommendations from interests and goals",
				Collection:       "education_programs",
				RecognizedParams: []string{"terms", "interests", "ignoreProfile", "getAllMatches"},
				DefaultLimit:     10,
				MaxLimit:         100,
			},
		},
	}
}

// registrySchema constrains registry override files. Tool names must be
// snake_case so they round-trip through BPMN variable mappings unchanged.
var registrySchema = map[string]interface{}{
	"type":     "object",
	"required": []string{"version", "tools"},
	"properties": map[string]interface{}{
		"version":     map[string]interface{}{"type": "string"},
		"lastUpdated": map[string]interface{}{"type": "string"},
		"tools": map[string]interface{}{
			"type":     "array",
			"minItems": 1,
			"items": map[string]interface{}{
				"type":     "object",
				"required": []string{"name", "collection"},
				"properties": map[string]interface{}{
					"name":         map[string]interface{}{"type": "string", "pattern": "^[a-z][a-z0-9_]*$"},
					"collection":   map[string]interface{}{"type": "string"},
					"defaultLimit": map[string]interface{}{"type": "integer", "minimum": 1},
					"maxLimit":     map[string]interface{}{"type": "integer", "minimum": 1},
				},
			},
		},
	},
}

// LoadRegistry reads a registry override from disk and validates it
// before it can shadow the builtin catalog.
func LoadRegistry(path string) (*ToolRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(registrySchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("registry validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, fmt.Errorf("registry file invalid: %v", errs)
	}

	var reg ToolRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}
