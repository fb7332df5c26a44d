// internal/advisory/terms/expander_test.go
package terms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpand_Abbreviations(t *testing.T) {
	tests := []struct {
		name     string
		term     string
		expected []string
	}{
		{
			name:     "comp sci expands to full disciplinary names",
			term:     "comp sci",
			expected: []string{"computer science", "computing", "information technology"},
		},
		{
			name:     "case and whitespace are normalized",
			term:     "  Comp Sci ",
			expected: []string{"computer science", "computing", "information technology"},
		},
		{
			name:     "rn expands to nursing",
			term:     "rn",
			expected: []string{"nursing", "registered nursing"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Expand(tt.term))
		})
	}
}

func TestExpand_MorphologicalVariants(t *testing.T) {
	tests := []struct {
		name     string
		term     string
		expected []string
	}{
		{name: "regular singular gains plural", term: "program", expected: []string{"programs"}},
		{name: "regular plural gains singular", term: "programs", expected: []string{"program"}},
		{name: "y to ies", term: "pathway", expected: []string{"pathways"}},
		{name: "consonant-y to ies", term: "biotechnology", expected: []string{"biotechnologies"}},
		{name: "ies to y", term: "technologies", expected: []string{"technology"}},
		{name: "ics has no variant", term: "robotics", expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Expand(tt.term))
		})
	}
}

func TestExpand_Total(t *testing.T) {
	// Never fails, never panics, deterministic across calls.
	assert.Nil(t, Expand(""))
	assert.Nil(t, Expand("   "))

	first := Expand("nursing")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Expand("nursing"))
	}
}

func TestExpandAll(t *testing.T) {
	out := ExpandAll([]string{"comp sci", "Nursing", "comp sci"})

	// Originals preserved in input order, expansions appended, no dups.
	assert.Equal(t, "comp sci", out[0])
	assert.Contains(t, out, "computer science")
	assert.Contains(t, out, "nursing")
	assert.Contains(t, out, "registered nursing")

	seen := map[string]int{}
	for _, s := range out {
		seen[s]++
		assert.Equal(t, 1, seen[s], "duplicate term %q", s)
	}
}
