// pkg/registry/registry_test.go
package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinCoversPlannerTools(t *testing.T) {
	reg := Builtin()

	for _, name := range []string{
		"search_programs",
		"search_all_collections",
		"get_course_pathways",
		"get_career_stats",
		"get_collection_stats",
		"recommend_programs",
	} {
		tool := reg.Find(name)
		require.NotNil(t, tool, name)
		assert.NotEmpty(t, tool.Description)
		assert.LessOrEqual(t, tool.DefaultLimit, tool.MaxLimit)
	}

	assert.Nil(t, reg.Find("drop_all_tables"))
}

func TestLoadRegistryOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.json")
	err := os.WriteFile(path, []byte(`{
		"version": "2.0",
		"tools": [
			{"name": "search_programs", "collection": "education_programs", "defaultLimit": 25, "maxLimit": 100}
		]
	}`), 0o644)
	require.NoError(t, err)

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, "2.0", reg.Version)
	require.NotNil(t, reg.Find("search_programs"))
	assert.Equal(t, 25, reg.Find("search_programs").DefaultLimit)
}

func TestLoadRegistryRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.json")
	err := os.WriteFile(path, []byte(`{
		"version": "2.0",
		"tools": [
			{"name": "SearchPrograms"}
		]
	}`), 0o644)
	require.NoError(t, err)

	_, err = LoadRegistry(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registry file invalid")
}

func TestLoadRegistryMissingFile(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
