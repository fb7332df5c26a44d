// internal/advisory/scoring/career.go
package scoring

import "advisor-workers/internal/models"

// Demand boost thresholds on posting volume. Applied only when the base
// keyword-match score is already positive: popularity never promotes an
// otherwise-irrelevant record.
const (
	demandThresholdLow  = 100
	demandThresholdHigh = 500
	demandBonusLow      = 2.0
	demandBonusHigh     = 2.0
)

// SearchScoreCareer ranks a labor-market record against search terms and
// boosts in-demand careers whose posting volume clears the two
// increasing thresholds.
func SearchScoreCareer(c *models.CareerStat, searchTerms []string) float64 {
	base := searchScore(careerFields(c), searchTerms)
	if base <= 0 {
		return base
	}
	if c.PostingVolume > demandThresholdLow {
		base += demandBonusLow
	}
	if c.PostingVolume > demandThresholdHigh {
		base += demandBonusHigh
	}
	return base
}

// ProfileScoreCareer ranks a labor-market record against the caller's
// profile, with the same demand gating as search mode.
func ProfileScoreCareer(c *models.CareerStat, profile *models.UserProfileContext) float64 {
	if profile == nil {
		return 0
	}
	base := interestOverlap(lowerAll(c.Keywords), lower(c.Category), profile.Interests)
	base += goalOverlap([]string{lower(c.Title)}, profile.CareerGoals)
	if base <= 0 {
		return base
	}
	if c.PostingVolume > demandThresholdLow {
		base += demandBonusLow
	}
	if c.PostingVolume > demandThresholdHigh {
		base += demandBonusHigh
	}
	return base
}
