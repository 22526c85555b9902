package dto

// CandidateQuery drives the candidate listing. Empty fields do not filter.
type CandidateQuery struct {
	Search     string
	Skills     []string
	MatchAll   bool
	Experience []string
	Education  []string
	SortBy     string
	SortDir    string
	Page       int
	PageSize   int
}

type CandidateDTO struct {
	Filename        string         `json:"filename"`
	Name            string         `json:"name"`
	Email           string         `json:"email"`
	Location        string         `json:"location"`
	Years           int            `json:"years"`
	Education       string         `json:"education"`
	Skills          []string       `json:"skills"`
	Rank            *int           `json:"rank,omitempty"`
	MatchPercentage *float64       `json:"match_percentage,omitempty"`
	MatchingSkills  []string       `json:"matching_skills,omitempty"`
	Gaps            []string       `json:"gaps,omitempty"`
	FullResume      *ResumeProfile `json:"full_resume"`
}
