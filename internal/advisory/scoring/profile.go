// internal/advisory/scoring/profile.go
package scoring

import (
	"strings"

	"advisor-workers/internal/models"
)

// Profile-mode signal weights. Each family is capped independently so no
// single signal can dominate the final score.
const (
	pointsPerInterest = 2.0
	interestCap       = 6.0
	pointsPerGoal     = 3.0
	credentialBonus   = 4.0
	regionBonus       = 3.0
)

// credentialReach maps the caller's education tier to the credential
// tiers reachable from it. A program whose tier is listed gets the fixed
// credential bonus.
var credentialReach = map[string][]string{
	models.EducationMiddleSchool: {"certificate"},
	models.EducationHighSchool:   {"certificate", "associate", "bachelor"},
	models.EducationSomeCollege:  {"certificate", "associate", "bachelor"},
	models.EducationAssociate:    {"certificate", "bachelor"},
	models.EducationBachelor:     {"graduate"},
	models.EducationGraduate:     {"graduate"},
}

// locationRegion is a static lookup resolving campus locations and
// profile locations to a coarse region label.
var locationRegion = map[string]string{
	"seattle":   "puget_sound",
	"tacoma":    "puget_sound",
	"bellevue":  "puget_sound",
	"everett":   "puget_sound",
	"olympia":   "puget_sound",
	"spokane":   "inland_east",
	"pullman":   "inland_east",
	"yakima":    "central",
	"wenatchee": "central",
	"tri-cities": "central",
	"vancouver": "southwest",
	"longview":  "southwest",
	"bellingham": "northwest",
	"mount vernon": "northwest",
}

// ProfileScoreProgram ranks a program against the caller's stored
// profile: interest overlap (capped), career-goal overlap (linear),
// credential-tier reachability, and geographic proximity. Missing or
// unknown fields contribute zero.
func ProfileScoreProgram(p *models.EducationProgram, profile *models.UserProfileContext) float64 {
	if profile == nil {
		return 0
	}

	score := interestOverlap(lowerAll(p.Keywords), strings.ToLower(p.Category), profile.Interests)
	score += goalOverlap(lowerAll(p.CareerOutcomes), profile.CareerGoals)

	if reachable(profile.EducationLevel, p.CredentialTier) {
		score += credentialBonus
	}
	if sameRegion(p.Location, profile.Location) {
		score += regionBonus
	}
	return score
}

// interestOverlap awards points per profile interest matching the
// record's keywords or category, capped at interestCap.
func interestOverlap(keywords []string, category string, interests []string) float64 {
	score := 0.0
	for _, raw := range interests {
		interest := strings.ToLower(strings.TrimSpace(raw))
		if interest == "" {
			continue
		}
		matched := category != "" && strings.Contains(category, interest)
		if !matched {
			for _, kw := range keywords {
				if strings.Contains(kw, interest) || strings.Contains(interest, kw) {
					matched = true
					break
				}
			}
		}
		if matched {
			score += pointsPerInterest
		}
	}
	if score > interestCap {
		return interestCap
	}
	return score
}

// goalOverlap is linear in the number of stated career goals that appear
// in the record's declared outcomes. Deliberately uncapped.
func goalOverlap(outcomes []string, goals []string) float64 {
	score := 0.0
	for _, raw := range goals {
		goal := strings.ToLower(strings.TrimSpace(raw))
		if goal == "" {
			continue
		}
		for _, oc := range outcomes {
			if strings.Contains(oc, goal) || strings.Contains(goal, oc) {
				score += pointsPerGoal
				break
			}
		}
	}
	return score
}

func reachable(educationLevel, credentialTier string) bool {
	if educationLevel == "" || credentialTier == "" {
		return false
	}
	for _, tier := range credentialReach[educationLevel] {
		if tier == strings.ToLower(credentialTier) {
			return true
		}
	}
	return false
}

func sameRegion(recordLocation, profileLocation string) bool {
	if recordLocation == "" || profileLocation == "" {
		return false
	}
	a := locationRegion[strings.ToLower(strings.TrimSpace(recordLocation))]
	b := locationRegion[strings.ToLower(strings.TrimSpace(profileLocation))]
	return a != "" && a == b
}
