// internal/advisory/scoring/pathway.go
package scoring

import (
	"strings"

	"advisor-workers/internal/models"
)

// Pathway-variant weights: linked downstream program options and
// grade-timing appropriateness on top of the shared profile signals.
const (
	pointsPerLinkedProgram = 1.0
	linkedProgramCap       = 3.0
	finalGradeBonus        = 1.0
	perRemainingYearBonus  = 1.0
)

// ProfileScorePathway ranks a course pathway against the caller's
// profile. On top of interest/goal overlap it rewards the number of
// linked downstream program options (capped) and how much runway the
// student has left in the pathway's grade span.
func ProfileScorePathway(p *models.PathwayCourseSequence, profile *models.UserProfileContext) float64 {
	if profile == nil {
		return 0
	}

	score := interestOverlap(lowerAll(p.Keywords), strings.ToLower(p.Category), profile.Interests)
	score += goalOverlap(lowerAll(p.CareerOutcomes), profile.CareerGoals)

	linked := float64(len(p.LinkedProgramID)) * pointsPerLinkedProgram
	if linked > linkedProgramCap {
		linked = linkedProgramCap
	}
	score += linked

	score += gradeTimingBonus(p, profile.GradeLevel)
	return score
}

// gradeTimingBonus tapers with remaining school years: a grade 9 student
// gets the full runway bonus, a senior only the final-year bonus. Zero
// when the grade is unknown or outside the pathway's span.
func gradeTimingBonus(p *models.PathwayCourseSequence, gradeLevel int) float64 {
	if gradeLevel == 0 {
		return 0
	}
	end := p.EndGrade
	if end == 0 {
		end = 12
	}
	start := p.StartGrade
	if start == 0 {
		start = 9
	}
	if gradeLevel < start || gradeLevel > end {
		return 0
	}
	remaining := end - gradeLevel
	if remaining == 0 {
		return finalGradeBonus
	}
	return finalGradeBonus + float64(remaining)*perRemainingYearBonus
}
