package dto

type RankResumesRequest struct {
	JobDescription string `json:"job_description" validate:"required"`
	// ResumesFile is accepted for compatibility with older clients and ignored.
	ResumesFile string `json:"resumes_file,omitempty"`
}

type RankedResume struct {
	Filename        string         `json:"filename"`
	Rank            int            `json:"rank"`
	MatchPercentage float64        `json:"match_percentage"`
	MatchingSkills  []string       `json:"matching_skills"`
	Gaps            []string       `json:"gaps"`
	Reasoning       string         `json:"reasoning"`
	FullResume      *ResumeProfile `json:"full_resume"`
}

type RankingResponse struct {
	RankingMethod string         `json:"ranking_method"`
	RankedResumes []RankedResume `json:"ranked_resumes"`
}
