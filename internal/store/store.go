// internal/store/store.go
package store

import (
	"context"
	"database/sql"

	"advisor-workers/internal/advisory/gateway"
	"advisor-workers/internal/common/logger"
	"advisor-workers/internal/models"
	"advisor-workers/internal/store/elastic"
	"advisor-workers/internal/store/postgres"
)

// Store is the combined record store: PostgreSQL holds the collections
// of record, Elasticsearch serves the broad cross-collection search.
// Implements the retrieval gateway's RecordStore.
type Store struct {
	db       *sql.DB
	searcher *elastic.Searcher
	logger   logger.Logger
}

// New creates a combined store. The searcher may be nil when no
// Elasticsearch cluster is configured; broad searches then fan out over
// the relational queries instead.
func New(db *sql.DB, searcher *elastic.Searcher, log logger.Logger) *Store {
	return &Store{
		db:       db,
		searcher: searcher,
		logger:   log.WithFields(map[string]interface{}{"component": "store"}),
	}
}

func (s *Store) SearchPrograms(ctx context.Context, terms []string, category string, limit int) ([]models.EducationProgram, error) {
	return postgres.SearchPrograms(ctx, s.db, terms, category, limit)
}

func (s *Store) PathwaysForGrade(ctx context.Context, terms []string, gradeLevel, limit int) ([]models.PathwayCourseSequence, error) {
	return postgres.PathwaysForGrade(ctx, s.db, terms, gradeLevel, limit)
}

func (s *Store) CareerStats(ctx context.Context, terms []string, limit int) ([]models.CareerStat, error) {
	return postgres.CareerStats(ctx, s.db, terms, limit)
}

func (s *Store) CollectionStats(ctx context.Context) (*models.CollectionStats, error) {
	return postgres.CollectionStats(ctx, s.db)
}

// SearchAll prefers the search cluster and falls back to the relational
// queries when the cluster is absent or failing. The fallback is logged,
// not surfaced: a degraded broad search beats a failed tool call.
func (s *Store) SearchAll(ctx context.Context, terms []string, limit int) (*gateway.AllCollections, error) {
	if s.searcher != nil {
		res, err := s.searcher.Search(ctx, terms, limit)
		if err == nil {
			return &gateway.AllCollections{
				Programs: res.Programs,
				Pathways: res.Pathways,
				Careers:  res.Careers,
			}, nil
		}
		s.logger.Warn("search cluster unavailable, falling back to relational search", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return s.relationalSearchAll(ctx, terms, limit)
}

func (s *Store) relationalSearchAll(ctx context.Context, terms []string, limit int) (*gateway.AllCollections, error) {
	programs, err := postgres.SearchPrograms(ctx, s.db, terms, "", limit)
	if err != nil {
		return nil, err
	}
	pathways, err := postgres.PathwaysForGrade(ctx, s.db, terms, 0, limit)
	if err != nil {
		return nil, err
	}
	careers, err := postgres.CareerStats(ctx, s.db, terms, limit)
	if err != nil {
		return nil, err
	}
	return &gateway.AllCollections{
		Programs: programs,
		Pathways: pathways,
		Careers:  careers,
	}, nil
}
