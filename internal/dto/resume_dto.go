package dto

import (
	"encoding/json"
	"fmt"
	"strings"
)

type ContactInfo struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
	Website  string `json:"website,omitempty"`
}

type Education struct {
	Degree         string   `json:"degree"`
	Institution    string   `json:"institution"`
	GraduationYear int      `json:"graduation_year"`
	GPA            *float64 `json:"gpa,omitempty"`
	Honors         []string `json:"honors,omitempty"`
}

type WorkExperience struct {
	Company          string   `json:"company"`
	JobTitle         string   `json:"job_title"`
	StartDate        string   `json:"start_date"`
	EndDate          string   `json:"end_date,omitempty"`
	Responsibilities []string `json:"responsibilities"`
	Technologies     []string `json:"technologies,omitempty"`
}

// StringList accepts either a JSON array of strings or a single string.
// Older extraction results stored soft skills as one comma separated value.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("expected string or list of strings: %w", err)
	}
	if single == "" {
		*l = nil
		return nil
	}
	*l = StringList{single}
	return nil
}

type Skills struct {
	TechnicalSkills []string   `json:"technical_skills"`
	SoftSkills      StringList `json:"soft_skills,omitempty"`
	Certifications  []string   `json:"certifications,omitempty"`
}

type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies,omitempty"`
	StartDate    string   `json:"start_date,omitempty"`
	EndDate      string   `json:"end_date,omitempty"`
	Link         string   `json:"link,omitempty"`
}

type Achievements struct {
	ProfessionalAwards      []string `json:"professional_awards,omitempty"`
	Publications            []string `json:"publications,omitempty"`
	ConferencePresentations []string `json:"conference_presentations,omitempty"`
	Patents                 []string `json:"patents,omitempty"`
	VolunteerWork           []string `json:"volunteer_work,omitempty"`
	LeadershipRoles         []string `json:"leadership_roles,omitempty"`
	CommunityInvolvement    []string `json:"community_involvement,omitempty"`
}

// ResumeProfile is the structured form the analyser extracts from an uploaded resume.
type ResumeProfile struct {
	ContactInfo    ContactInfo      `json:"contact_info"`
	Education      []Education      `json:"education"`
	WorkExperience []WorkExperience `json:"work_experience"`
	Skills         Skills           `json:"skills"`
	Summary        string           `json:"summary,omitempty"`
	Projects       []Project        `json:"projects,omitempty"`
	Achievements   *Achievements    `json:"achievements,omitempty"`
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// Text flattens the profile into a single line of prose for prompts and
// similarity scoring.
func (p *ResumeProfile) Text() string {
	if p == nil {
		return ""
	}
	parts := []string{
		"Name: " + orNA(p.ContactInfo.FullName),
		"Email: " + orNA(p.ContactInfo.Email),
		"Location: " + orNA(p.ContactInfo.Location),
		"Education:",
	}
	for _, edu := range p.Education {
		parts = append(parts, fmt.Sprintf("- %s from %s", orNA(edu.Degree), orNA(edu.Institution)))
	}
	parts = append(parts, "Work Experience:")
	for _, exp := range p.WorkExperience {
		parts = append(parts, fmt.Sprintf("- %s at %s", orNA(exp.JobTitle), orNA(exp.Company)))
		for _, r := range exp.Responsibilities {
			parts = append(parts, "  * "+r)
		}
	}
	if len(p.Skills.TechnicalSkills) > 0 {
		parts = append(parts, "Technical Skills:")
		for _, s := range p.Skills.TechnicalSkills {
			parts = append(parts, "- "+s)
		}
	}
	if len(p.Skills.SoftSkills) > 0 {
		parts = append(parts, "Soft Skills: "+strings.Join(p.Skills.SoftSkills, ", "))
	}
	if len(p.Skills.Certifications) > 0 {
		parts = append(parts, "Certifications:")
		for _, c := range p.Skills.Certifications {
			parts = append(parts, "- "+c)
		}
	}
	if len(p.Projects) > 0 {
		parts = append(parts, "Projects:")
		for _, pr := range p.Projects {
			parts = append(parts, "- "+orNA(pr.Name))
			parts = append(parts, "  Description: "+orNA(pr.Description))
		}
	}
	return strings.Join(parts, " ")
}

// ResumeResult is one entry of the analysis results map: either a profile or
// an error string.
type ResumeResult struct {
	Profile *ResumeProfile
	Error   string
}

func (r ResumeResult) MarshalJSON() ([]byte, error) {
	if r.Error != "" || r.Profile == nil {
		return json.Marshal(map[string]string{"error": r.Error})
	}
	return json.Marshal(r.Profile)
}

func (r *ResumeResult) UnmarshalJSON(data []byte) error {
	var peek struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal(data, &peek); err != nil {
		return err
	}
	if peek.Error != nil {
		r.Error = *peek.Error
		r.Profile = nil
		return nil
	}
	var profile ResumeProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return err
	}
	r.Profile = &profile
	r.Error = ""
	return nil
}
