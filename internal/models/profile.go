// internal/models/profile.go
package models

import (
	"sort"
	"strconv"
)

// Education levels as reported by the profile extractor.
const (
	EducationMiddleSchool = "middle_school"
	EducationHighSchool   = "high_school"
	EducationSomeCollege  = "some_college"
	EducationAssociate    = "associate"
	EducationBachelor     = "bachelor"
	EducationGraduate     = "graduate"
)

// UserProfileContext is owned by the caller. The core only reads it and
// never mutates it; a nil profile is always legal.
type UserProfileContext struct {
	EducationLevel string   `json:"educationLevel,omitempty"`
	GradeLevel     int      `json:"gradeLevel,omitempty"`
	Interests      []string `json:"interests,omitempty"`
	CareerGoals    []string `json:"careerGoals,omitempty"`
	Location       string   `json:"location,omitempty"`
	Timeline       string   `json:"timeline,omitempty"`
}

// IsPreTertiary reports whether the profile describes a learner still in
// secondary school (or earlier), which anchors plans on pathway data.
func (p *UserProfileContext) IsPreTertiary() bool {
	if p == nil {
		return false
	}
	switch p.EducationLevel {
	case EducationMiddleSchool, EducationHighSchool:
		return true
	}
	return false
}

// IsEmpty reports whether the profile carries no ranking signal at all.
func (p *UserProfileContext) IsEmpty() bool {
	if p == nil {
		return true
	}
	return p.EducationLevel == "" && p.GradeLevel == 0 &&
		len(p.Interests) == 0 && len(p.CareerGoals) == 0 &&
		p.Location == ""
}

// Fingerprint returns a coarse, stable identifier of the profile fields
// that influence ranking. Used for cache-key isolation; callers that want
// cross-user sharing pass an empty fingerprint instead.
func (p *UserProfileContext) Fingerprint() string {
	if p.IsEmpty() {
		return ""
	}
	fp := p.EducationLevel
	if p.GradeLevel > 0 {
		fp += ":g" + strconv.Itoa(p.GradeLevel)
	}
	interests := append([]string(nil), p.Interests...)
	sort.Strings(interests)
	for _, s := range interests {
		fp += ":i=" + s
	}
	goals := append([]string(nil), p.CareerGoals...)
	sort.Strings(goals)
	for _, s := range goals {
		fp += ":c=" + s
	}
	if p.Location != "" {
		fp += ":l=" + p.Location
	}
	return fp
}
