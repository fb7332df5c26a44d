// internal/advisory/scoring/search.go
package scoring

import (
	"sort"
	"strings"

	"advisor-workers/internal/advisory/terms"
	"advisor-workers/internal/models"
)

// Search-mode point weights. Each search term is evaluated independently
// against the record and its points summed.
const (
	pointsExactName   = 10.0
	pointsNameSub     = 5.0
	pointsKeyword     = 3.0
	pointsCategory    = 3.0
	pointsDescription = 2.0
	pointsOutcome     = 2.0
	pointsFuzzyBonus  = 1.0
)

// searchFields is the normalized view of any record kind that search-mode
// scoring operates on. Missing fields stay empty and contribute zero.
type searchFields struct {
	name        string
	category    string
	description string
	keywords    []string
	outcomes    []string
}

func programFields(p *models.EducationProgram) searchFields {
	return searchFields{
		name:        strings.ToLower(p.Name),
		category:    strings.ToLower(p.Category),
		description: strings.ToLower(p.Description),
		keywords:    lowerAll(p.Keywords),
		outcomes:    lowerAll(p.CareerOutcomes),
	}
}

func pathwayFields(p *models.PathwayCourseSequence) searchFields {
	return searchFields{
		name:        strings.ToLower(p.Name),
		category:    strings.ToLower(p.Category),
		description: strings.ToLower(p.Description),
		keywords:    lowerAll(p.Keywords),
		outcomes:    lowerAll(p.CareerOutcomes),
	}
}

func careerFields(c *models.CareerStat) searchFields {
	return searchFields{
		name:        strings.ToLower(c.Title),
		category:    strings.ToLower(c.Category),
		description: strings.ToLower(c.Description),
		keywords:    lowerAll(c.Keywords),
	}
}

// SearchScoreProgram ranks a program against raw search terms, profile
// ignored. Pure and deterministic.
func SearchScoreProgram(p *models.EducationProgram, searchTerms []string) float64 {
	return searchScore(programFields(p), searchTerms)
}

// SearchScorePathway ranks a course pathway against raw search terms.
func SearchScorePathway(p *models.PathwayCourseSequence, searchTerms []string) float64 {
	return searchScore(pathwayFields(p), searchTerms)
}

func searchScore(f searchFields, searchTerms []string) float64 {
	score := 0.0
	for _, raw := range searchTerms {
		term := strings.ToLower(strings.TrimSpace(raw))
		if term == "" {
			continue
		}

		if f.name == term {
			score += pointsExactName
		} else if f.name != "" && strings.Contains(f.name, term) {
			score += pointsNameSub
		}

		for _, kw := range f.keywords {
			if kw == term {
				score += pointsKeyword
				break
			}
		}

		if f.category != "" && (f.category == term || strings.Contains(f.category, term)) {
			score += pointsCategory
		}

		if f.description != "" && strings.Contains(f.description, term) {
			score += pointsDescription
		}

		for _, oc := range f.outcomes {
			if strings.Contains(oc, term) {
				score += pointsOutcome
				break
			}
		}

		if fuzzyKeywordOverlap(term, f.keywords) {
			score += pointsFuzzyBonus
		}
	}
	return score
}

// fuzzyKeywordOverlap reports whether the term, or any of its domain
// expansions, partially overlaps a record keyword without being an exact
// member of the keyword set.
func fuzzyKeywordOverlap(term string, keywords []string) bool {
	candidates := append([]string{term}, terms.Expand(term)...)
	for _, kw := range keywords {
		for _, c := range candidates {
			if kw == c {
				continue
			}
			if strings.Contains(kw, c) || strings.Contains(c, kw) {
				return true
			}
		}
	}
	return false
}

// Sort orders records by score descending. Ties break by the record's
// stable ID ascending: this is a deliberate, tested guarantee, not an
// accident of store iteration order.
func Sort(records []models.ScoredRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Score != records[j].Score {
			return records[i].Score > records[j].Score
		}
		return records[i].RecordID() < records[j].RecordID()
	})
}

func lower(s string) string { return strings.ToLower(s) }

func lowerAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
