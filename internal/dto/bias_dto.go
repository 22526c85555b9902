package dto

var DefaultBiasAnalysisTypes = []string{"gender", "age", "ethnicity", "education", "experience"}

type BiasAnalysisRequest struct {
	JobTitle       string   `json:"job_title" validate:"required"`
	JobDescription string   `json:"job_description" validate:"required"`
	AnalysisTypes  []string `json:"analysis_types"`
}
