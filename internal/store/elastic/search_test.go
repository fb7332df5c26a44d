// internal/store/elastic/search_test.go
package elastic

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCrossCollectionQuery(t *testing.T) {
	t.Run("terms become boosted should clauses", func(t *testing.T) {
		q := buildCrossCollectionQuery([]string{"nursing", "healthcare"})

		boolQuery := q["query"].(map[string]interface{})["bool"].(map[string]interface{})
		should := boolQuery["should"].([]interface{})
		require.Len(t, should, 2)
		assert.Equal(t, 1, boolQuery["minimum_should_match"])

		mm := should[0].(map[string]interface{})["multi_match"].(map[string]interface{})
		assert.Equal(t, "nursing", mm["query"])
		assert.Contains(t, mm["fields"], "name^3")
	})

	t.Run("no terms degrades to match_all", func(t *testing.T) {
		q := buildCrossCollectionQuery(nil)
		_, ok := q["query"].(map[string]interface{})["match_all"]
		assert.True(t, ok)

		q = buildCrossCollectionQuery([]string{""})
		_, ok = q["query"].(map[string]interface{})["match_all"]
		assert.True(t, ok)
	})
}

func TestSplitByIndex(t *testing.T) {
	raw := `{
		"hits": {"hits": [
			{"_index": "education_programs", "_id": "prog-001", "_source": {"name": "Registered Nursing"}},
			{"_index": "course_pathways", "_id": "path-001", "_source": {"id": "path-001", "name": "Health Sciences", "startGrade": 9}},
			{"_index": "career_stats", "_id": "career-001", "_source": {"title": "Registered Nurse", "postingVolume": 740}},
			{"_index": "unrelated_index", "_id": "x", "_source": {}}
		]}
	}`
	var parsed searchResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &parsed))

	out, err := splitByIndex(parsed)
	require.NoError(t, err)

	require.Len(t, out.Programs, 1)
	// Document ID backfills a missing source ID.
	assert.Equal(t, "prog-001", out.Programs[0].ID)

	require.Len(t, out.Pathways, 1)
	assert.Equal(t, 9, out.Pathways[0].StartGrade)

	require.Len(t, out.Careers, 1)
	assert.Equal(t, 740, out.Careers[0].PostingVolume)
}
