package dto

type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type NameValue struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type SummaryStats struct {
	TotalResumes  int `json:"total_resumes"`
	TotalSkills   int `json:"total_skills"`
	TotalProjects int `json:"total_projects"`
}

type SkillsData struct {
	TopSkills         []NameCount `json:"top_skills"`
	SkillDistribution []NameValue `json:"skill_distribution"`
}

type TechnologyData struct {
	TopTechnologies        []NameCount `json:"top_technologies"`
	TechnologyDistribution []NameValue `json:"technology_distribution"`
}

type EducationEntry struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        any    `json:"year"`
}

type ResumeComparison struct {
	Name            string           `json:"name"`
	SkillsCount     int              `json:"skills_count"`
	ProjectsCount   int              `json:"projects_count"`
	ExperienceCount int              `json:"experience_count"`
	Education       []EducationEntry `json:"education"`
	ExperienceLevel string           `json:"experience_level"`
}

type ChartData struct {
	SummaryStats     SummaryStats       `json:"summary_stats"`
	SkillsData       SkillsData         `json:"skills_data"`
	ExperienceData   []NameValue        `json:"experience_data"`
	EducationData    []NameCount        `json:"education_data"`
	TechnologyData   TechnologyData     `json:"technology_data"`
	ResumeComparison []ResumeComparison `json:"resume_comparison"`
}

type ChartDataResponse struct {
	Message   string     `json:"message"`
	ChartData *ChartData `json:"chart_data,omitempty"`
}
