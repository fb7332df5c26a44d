// internal/store/postgres/pathways.go
package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"advisor-workers/internal/models"
)

const pathwayColumns = `id, name, description, category, keywords, career_outcomes, start_grade, end_grade, linked_program_ids`

// PathwaysForGrade filters course pathways by term patterns and, when a
// grade is given, to sequences whose span covers that grade. Grade zero
// means no grade filter.
func PathwaysForGrade(ctx context.Context, db *sql.DB, terms []string, gradeLevel, limit int) ([]models.PathwayCourseSequence, error) {
	patterns := likePatterns(terms)

	var rows *sql.Rows
	var err error
	switch {
	case len(patterns) == 0 && gradeLevel == 0:
		rows, err = db.QueryContext(ctx, `
			SELECT `+pathwayColumns+`
			FROM course_pathways
			ORDER BY id
			LIMIT $1`, limit)
	case len(patterns) == 0:
		rows, err = db.QueryContext(ctx, `
			SELECT `+pathwayColumns+`
			FROM course_pathways
			WHERE start_grade <= $1 AND end_grade >= $1
			ORDER BY id
			LIMIT $2`, gradeLevel, limit)
	case gradeLevel == 0:
		rows, err = db.QueryContext(ctx, `
			SELECT `+pathwayColumns+`
			FROM course_pathways
			WHERE name ILIKE ANY($1)
			   OR description ILIKE ANY($1)
			   OR category ILIKE ANY($1)
			   OR EXISTS (SELECT 1 FROM unnest(keywords) kw WHERE kw ILIKE ANY($1))
			   OR EXISTS (SELECT 1 FROM unnest(career_outcomes) oc WHERE oc ILIKE ANY($1))
			ORDER BY id
			LIMIT $2`, pq.Array(patterns), limit)
	default:
		rows, err = db.QueryContext(ctx, `
			SELECT `+pathwayColumns+`
			FROM course_pathways
			WHERE start_grade <= $2 AND end_grade >= $2
			  AND (name ILIKE ANY($1)
			   OR description ILIKE ANY($1)
			   OR category ILIKE ANY($1)
			   OR EXISTS (SELECT 1 FROM unnest(keywords) kw WHERE kw ILIKE ANY($1))
			   OR EXISTS (SELECT 1 FROM unnest(career_outcomes) oc WHERE oc ILIKE ANY($1)))
			ORDER BY id
			LIMIT $3`, pq.Array(patterns), gradeLevel, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.PathwayCourseSequence
	for rows.Next() {
		var p models.PathwayCourseSequence
		var description, category sql.NullString
		var startGrade, endGrade sql.NullInt64
		err := rows.Scan(
			&p.ID, &p.Name, &description, &category,
			pq.Array(&p.Keywords), pq.Array(&p.CareerOutcomes),
			&startGrade, &endGrade, pq.Array(&p.LinkedProgramID),
		)
		if err != nil {
			return nil, err
		}
		p.Description = description.String
		p.Category = category.String
		p.StartGrade = int(startGrade.Int64)
		p.EndGrade = int(endGrade.Int64)
		results = append(results, p)
	}
	return results, rows.Err()
}

func pathwaysQuery(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, error) {
	pathways, err := PathwaysForGrade(ctx, db, paramTerms(params), paramInt(params, "gradeLevel", 0), paramInt(params, "limit", 100))
	if err != nil {
		return nil, 0, err
	}
	return pathways, len(pathways), nil
}
