package dto

import "encoding/json"

type EmailCredentials struct {
	SenderEmail string `json:"sender_email,omitempty" validate:"omitempty,email"`
	Password    string `json:"password,omitempty"`
}

// CandidateEntry is a ranked resume as the dashboard sends it back; only
// full_resume is read, everything else is passed through untouched.
type CandidateEntry struct {
	FullResume json.RawMessage `json:"full_resume,omitempty"`
}

type SendIndividualEmailRequest struct {
	EmailCredentials
	RankedResumes  []CandidateEntry `json:"ranked_resumes"`
	CandidateIndex int              `json:"candidate_index"`
	JobDescription map[string]any   `json:"job_description"`
	ProjectOptions map[string]any   `json:"project_options"`
	CompanyInfo    map[string]any   `json:"company_info"`
}

type SendBulkEmailRequest struct {
	EmailCredentials
	RankedResumes  []CandidateEntry `json:"ranked_resumes"`
	JobDescription map[string]any   `json:"job_description"`
	ProjectOptions map[string]any   `json:"project_options"`
	CompanyInfo    map[string]any   `json:"company_info"`
}

type EmailResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type BulkEmailResponse struct {
	Status          string                 `json:"status"`
	Summary         string                 `json:"summary"`
	DetailedResults map[string]EmailResult `json:"detailed_results"`
}

type ProjectDetails struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Requirements     []string `json:"requirements"`
	ExpectedOutcomes []string `json:"expected_outcomes"`
}

// AssignmentContent is what the model writes for a project assignment email.
type AssignmentContent struct {
	Subject        string          `json:"subject"`
	Greeting       string          `json:"greeting"`
	Introduction   string          `json:"introduction"`
	ProjectDetails *ProjectDetails `json:"project_details"`
	RepositoryName string          `json:"repository_name"`
	NextSteps      string          `json:"next_steps"`
	Closing        string          `json:"closing"`
}

type CompanyInfo struct {
	Name         string
	ContactEmail string
	Website      string
}
