// internal/store/postgres/careers.go
package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"advisor-workers/internal/models"
)

const careerColumns = `id, title, description, category, keywords, region, posting_volume, median_salary`

// CareerStats filters the labor-market records by term patterns.
func CareerStats(ctx context.Context, db *sql.DB, terms []string, limit int) ([]models.CareerStat, error) {
	patterns := likePatterns(terms)

	var rows *sql.Rows
	var err error
	if len(patterns) == 0 {
		rows, err = db.QueryContext(ctx, `
			SELECT `+careerColumns+`
			FROM career_stats
			ORDER BY id
			LIMIT $1`, limit)
	} else {
		rows, err = db.QueryContext(ctx, `
			SELECT `+careerColumns+`
			FROM career_stats
			WHERE title ILIKE ANY($1)
			   OR description ILIKE ANY($1)
			   OR category ILIKE ANY($1)
			   OR EXISTS (SELECT 1 FROM unnest(keywords) kw WHERE kw ILIKE ANY($1))
			ORDER BY id
			LIMIT $2`, pq.Array(patterns), limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.CareerStat
	for rows.Next() {
		var c models.CareerStat
		var description, category, region sql.NullString
		var postingVolume, medianSalary sql.NullInt64
		err := rows.Scan(
			&c.ID, &c.Title, &description, &category,
			pq.Array(&c.Keywords), &region, &postingVolume, &medianSalary,
		)
		if err != nil {
			return nil, err
		}
		c.Description = description.String
		c.Category = category.String
		c.Region = region.String
		c.PostingVolume = int(postingVolume.Int64)
		c.MedianSalary = int(medianSalary.Int64)
		results = append(results, c)
	}
	return results, rows.Err()
}

// CollectionStats is the low-cost counts overview. One round trip.
func CollectionStats(ctx context.Context, db *sql.DB) (*models.CollectionStats, error) {
	var stats models.CollectionStats
	err := db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM education_programs),
			(SELECT COUNT(*) FROM course_pathways),
			(SELECT COUNT(*) FROM career_stats)`).Scan(
		&stats.ProgramCount, &stats.PathwayCount, &stats.CareerCount,
	)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func careersQuery(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, error) {
	careers, err := CareerStats(ctx, db, paramTerms(params), paramInt(params, "limit", 100))
	if err != nil {
		return nil, 0, err
	}
	return careers, len(careers), nil
}

func statsQuery(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, error) {
	stats, err := CollectionStats(ctx, db)
	if err != nil {
		return nil, 0, err
	}
	return stats, 1, nil
}
