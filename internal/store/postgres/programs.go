// internal/store/postgres/programs.go
package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"advisor-workers/internal/models"
)

const programColumns = `id, name, description, category, keywords, career_outcomes, credential_tier, location, institution`

// SearchPrograms filters the program listings by term patterns across the
// textual fields, optionally narrowed to one category. Candidate order is
// ID ascending; ranking happens upstream.
func SearchPrograms(ctx context.Context, db *sql.DB, terms []string, category string, limit int) ([]models.EducationProgram, error) {
	patterns := likePatterns(terms)

	var rows *sql.Rows
	var err error
	switch {
	case len(patterns) == 0 && category == "":
		rows, err = db.QueryContext(ctx, `
			SELECT `+programColumns+`
			FROM education_programs
			ORDER BY id
			LIMIT $1`, limit)
	case len(patterns) == 0:
		rows, err = db.QueryContext(ctx, `
			SELECT `+programColumns+`
			FROM education_programs
			WHERE category ILIKE $1
			ORDER BY id
			LIMIT $2`, "%"+category+"%", limit)
	case category == "":
		rows, err = db.QueryContext(ctx, `
			SELECT `+programColumns+`
			FROM education_programs
			WHERE name ILIKE ANY($1)
			   OR description ILIKE ANY($1)
			   OR category ILIKE ANY($1)
			   OR EXISTS (SELECT 1 FROM unnest(keywords) kw WHERE kw ILIKE ANY($1))
			   OR EXISTS (SELECT 1 FROM unnest(career_outcomes) oc WHERE oc ILIKE ANY($1))
			ORDER BY id
			LIMIT $2`, pq.Array(patterns), limit)
	default:
		rows, err = db.QueryContext(ctx, `
			SELECT `+programColumns+`
			FROM education_programs
			WHERE category ILIKE $2
			  AND (name ILIKE ANY($1)
			   OR description ILIKE ANY($1)
			   OR EXISTS (SELECT 1 FROM unnest(keywords) kw WHERE kw ILIKE ANY($1))
			   OR EXISTS (SELECT 1 FROM unnest(career_outcomes) oc WHERE oc ILIKE ANY($1)))
			ORDER BY id
			LIMIT $3`, pq.Array(patterns), "%"+category+"%", limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.EducationProgram
	for rows.Next() {
		var p models.EducationProgram
		var description, category, credentialTier, location, institution sql.NullString
		err := rows.Scan(
			&p.ID, &p.Name, &description, &category,
			pq.Array(&p.Keywords), pq.Array(&p.CareerOutcomes),
			&credentialTier, &location, &institution,
		)
		if err != nil {
			return nil, err
		}
		p.Description = description.String
		p.Category = category.String
		p.CredentialTier = credentialTier.String
		p.Location = location.String
		p.Institution = institution.String
		results = append(results, p)
	}
	return results, rows.Err()
}

func programsQuery(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, error) {
	category, _ := params["category"].(string)
	programs, err := SearchPrograms(ctx, db, paramTerms(params), category, paramInt(params, "limit", 100))
	if err != nil {
		return nil, 0, err
	}
	return programs, len(programs), nil
}
