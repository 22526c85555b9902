package service

import "google.golang.org/genai"

func str(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc}
}

func strList(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Description: desc, Items: &genai.Schema{Type: genai.TypeString}}
}

func object(desc string, props map[string]*genai.Schema, required ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Description: desc, Properties: props, Required: required}
}

// resumeSchema mirrors dto.ResumeProfile.
var resumeSchema = object("Structured resume profile", map[string]*genai.Schema{
	"contact_info": object("Candidate's contact information", map[string]*genai.Schema{
		"full_name": str("Full name of the candidate"),
		"email":     str("Professional email address"),
		"phone":     str("Phone number with country code"),
		"location":  str("City, State, Country"),
		"linkedin":  str("LinkedIn profile URL"),
		"github":    str("GitHub profile URL"),
		"website":   str("Personal website or portfolio URL"),
	}, "full_name", "email"),
	"education": {
		Type:        genai.TypeArray,
		Description: "Educational background",
		Items: object("", map[string]*genai.Schema{
			"degree":          str("Degree or certification name"),
			"institution":     str("Name of educational institution"),
			"graduation_year": {Type: genai.TypeInteger, Description: "Year of graduation"},
			"gpa":             {Type: genai.TypeNumber, Description: "GPA if available", Nullable: genai.Ptr(true)},
			"honors":          strList("Academic honors or awards"),
		}, "degree", "institution", "graduation_year"),
	},
	"work_experience": {
		Type:        genai.TypeArray,
		Description: "Professional work history",
		Items: object("", map[string]*genai.Schema{
			"company":          str("Company or organization name"),
			"job_title":        str("Job title or position"),
			"start_date":       str("Start date of employment"),
			"end_date":         str("End date of employment (leave blank if current job)"),
			"responsibilities": strList("Key responsibilities and achievements"),
			"technologies":     strList("Technologies or tools used"),
		}, "company", "job_title", "start_date", "responsibilities"),
	},
	"skills": object("Technical and soft skills", map[string]*genai.Schema{
		"technical_skills": strList("Technical skills and programming languages"),
		"soft_skills":      strList("Soft skills and interpersonal abilities"),
		"certifications":   strList("Professional certifications"),
	}, "technical_skills"),
	"summary": str("Professional summary or objective"),
	"projects": {
		Type:        genai.TypeArray,
		Description: "Notable projects",
		Items: object("", map[string]*genai.Schema{
			"name":         str("Project name"),
			"description":  str("Project description"),
			"technologies": strList("Technologies used"),
			"start_date":   str("Project start date"),
			"end_date":     str("Project end date"),
			"link":         str("Project link or repository"),
		}, "name", "description"),
	},
	"achievements": object("Awards, publications and other recognition", map[string]*genai.Schema{
		"professional_awards":      strList("Professional awards"),
		"publications":             strList("Publications"),
		"conference_presentations": strList("Conference presentations"),
		"patents":                  strList("Patents"),
		"volunteer_work":           strList("Volunteer work"),
		"leadership_roles":         strList("Leadership roles"),
		"community_involvement":    strList("Community involvement"),
	}),
}, "contact_info", "education", "work_experience", "skills")
