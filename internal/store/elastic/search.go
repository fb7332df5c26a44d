// internal/store/elastic/search.go
package elastic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"advisor-workers/internal/models"
)

// Index names, one per record collection.
const (
	IndexPrograms = "education_programs"
	IndexPathways = "course_pathways"
	IndexCareers  = "career_stats"
)

// Searcher runs the broad cross-collection search over all three
// indices in one request.
type Searcher struct {
	client *elasticsearch.Client
}

func NewSearcher(client *elasticsearch.Client) *Searcher {
	return &Searcher{client: client}
}

// CrossCollection is the per-index breakdown of one broad search.
type CrossCollection struct {
	Programs []models.EducationProgram
	Pathways []models.PathwayCourseSequence
	Careers  []models.CareerStat
}

// Search runs one multi-index request matching any of the given terms.
// Empty terms degrade to match_all so a broad browse still works.
func (s *Searcher) Search(ctx context.Context, terms []string, limit int) (*CrossCollection, error) {
	body, err := json.Marshal(buildCrossCollectionQuery(terms))
	if err != nil {
		return nil, err
	}

	req := esapi.SearchRequest{
		Index: []string{IndexPrograms, IndexPathways, IndexCareers},
		Body:  strings.NewReader(string(body)),
		Size:  &limit,
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("cross-collection search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("cross-collection search: %s", res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	return splitByIndex(parsed)
}

func buildCrossCollectionQuery(terms []string) map[string]interface{} {
	shouldClauses := make([]interface{}, 0, len(terms))
	for _, term := range terms {
		if term == "" {
			continue
		}
		shouldClauses = append(shouldClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  term,
				"fields": []string{"name^3", "title^3", "keywords^2", "category^2", "description", "career_outcomes"},
				"type":   "best_fields",
			},
		})
	}

	if len(shouldClauses) == 0 {
		return map[string]interface{}{
			"query": map[string]interface{}{"match_all": map[string]interface{}{}},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               shouldClauses,
				"minimum_should_match": 1,
			},
		},
	}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Index  string          `json:"_index"`
			ID     string          `json:"_id"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func splitByIndex(parsed searchResponse) (*CrossCollection, error) {
	out := &CrossCollection{}
	for _, hit := range parsed.Hits.Hits {
		switch hit.Index {
		case IndexPrograms:
			var p models.EducationProgram
			if err := json.Unmarshal(hit.Source, &p); err != nil {
				return nil, err
			}
			if p.ID == "" {
				p.ID = hit.ID
			}
			out.Programs = append(out.Programs, p)
		case IndexPathways:
			var p models.PathwayCourseSequence
			if err := json.Unmarshal(hit.Source, &p); err != nil {
				return nil, err
			}
			if p.ID == "" {
				p.ID = hit.ID
			}
			out.Pathways = append(out.Pathways, p)
		case IndexCareers:
			var c models.CareerStat
			if err := json.Unmarshal(hit.Source, &c); err != nil {
				return nil, err
			}
			if c.ID == "" {
				c.ID = hit.ID
			}
			out.Careers = append(out.Careers, c)
		}
		// Unknown indices are skipped, not errors: the cluster may carry
		// unrelated data.
	}
	return out, nil
}
