// internal/models/records.go
package models

// RecordKind names the heterogeneous record collections.
type RecordKind string

const (
	KindProgram RecordKind = "program"
	KindPathway RecordKind = "pathway"
	KindCareer  RecordKind = "career"
	KindStats   RecordKind = "stats"
)

// EducationProgram is a post-secondary program listing.
type EducationProgram struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	Category       string   `json:"category,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`
	CareerOutcomes []string `json:"careerOutcomes,omitempty"`
	CredentialTier string   `json:"credentialTier,omitempty"` // certificate | associate | bachelor | graduate
	Location       string   `json:"location,omitempty"`
	Institution    string   `json:"institution,omitempty"`
}

// PathwayCourseSequence is a secondary-school course pathway.
type PathwayCourseSequence struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	Category        string   `json:"category,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
	CareerOutcomes  []string `json:"careerOutcomes,omitempty"`
	StartGrade      int      `json:"startGrade,omitempty"`
	EndGrade        int      `json:"endGrade,omitempty"`
	LinkedProgramID []string `json:"linkedProgramIds,omitempty"`
}

// CareerStat is a labor-market statistics record.
type CareerStat struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Category      string   `json:"category,omitempty"`
	Keywords      []string `json:"keywords,omitempty"`
	Region        string   `json:"region,omitempty"`
	PostingVolume int      `json:"postingVolume,omitempty"`
	MedianSalary  int      `json:"medianSalary,omitempty"`
}

// CollectionStats is the low-cost overview returned by the statistics
// call appended to every plan.
type CollectionStats struct {
	ProgramCount int `json:"programCount"`
	PathwayCount int `json:"pathwayCount"`
	CareerCount  int `json:"careerCount"`
}

// ScoredRecord wraps exactly one record of any kind with its relevance
// score and originating tool. Ephemeral: recomputed on every retrieval,
// never persisted outside the cache payload.
type ScoredRecord struct {
	Kind       RecordKind             `json:"kind"`
	Program    *EducationProgram      `json:"program,omitempty"`
	Pathway    *PathwayCourseSequence `json:"pathway,omitempty"`
	Career     *CareerStat            `json:"career,omitempty"`
	Stats      *CollectionStats       `json:"stats,omitempty"`
	Score      float64                `json:"score"`
	SourceTool string                 `json:"sourceTool"`
}

// RecordID returns the stable identifier used as the secondary sort key
// when scores tie.
func (r ScoredRecord) RecordID() string {
	switch r.Kind {
	case KindProgram:
		if r.Program != nil {
			return r.Program.ID
		}
	case KindPathway:
		if r.Pathway != nil {
			return r.Pathway.ID
		}
	case KindCareer:
		if r.Career != nil {
			return r.Career.ID
		}
	}
	return ""
}

// UnifiedResponse is the merged, already-ranked output of one query plan.
// QueriesExecuted reflects strict execution order of the successful calls.
type UnifiedResponse struct {
	Programs        []ScoredRecord   `json:"programs,omitempty"`
	Pathways        []ScoredRecord   `json:"pathways,omitempty"`
	Careers         []ScoredRecord   `json:"careers,omitempty"`
	Stats           *CollectionStats `json:"stats,omitempty"`
	QueriesExecuted []string         `json:"queriesExecuted"`
	TotalResults    int              `json:"totalResults"`
}
