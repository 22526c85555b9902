package usecase

import (
	"context"
	"sort"
	"strings"

	"github.com/fadilmartias/resume-scanner/internal/dto"
)

var experienceLevels = []string{"Entry", "Junior", "Mid-level", "Senior", "Expert"}

type category struct {
	name     string
	keywords []string
}

var (
	skillCategories = []category{
		{"Frontend", []string{"html", "css", "javascript", "react"}},
		{"Backend", []string{"node", "express", "python", "java", "spring"}},
		{"DevOps", []string{"docker", "kubernetes", "aws", "azure", "ci/cd"}},
		{"Database", []string{"sql", "mysql", "postgres", "mongodb", "redis"}},
	}
	technologyCategories = []category{
		{"Frontend", []string{"html", "css", "javascript", "react"}},
		{"Backend", []string{"node", "express", "python", "java"}},
		{"DevOps", []string{"docker", "kubernetes", "aws"}},
		{"Database", []string{"sql", "mysql", "mongodb"}},
	}
)

type AnalyticsUsecase struct {
	resumes *ResumeUsecase
}

func NewAnalyticsUsecase(resumes *ResumeUsecase) *AnalyticsUsecase {
	return &AnalyticsUsecase{resumes: resumes}
}

func (uc *AnalyticsUsecase) ChartData(ctx context.Context) (*dto.ChartData, error) {
	profiles, err := uc.resumes.Profiles(ctx)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, ErrNoResumes
	}
	return BuildChartData(profiles), nil
}

// ExperienceLevel buckets a resume by projects*2 + skills*0.5 + jobs*5.
func ExperienceLevel(p *dto.ResumeProfile) string {
	score := float64(len(p.Projects))*2 + float64(len(p.Skills.TechnicalSkills))*0.5 + float64(len(p.WorkExperience))*5
	switch {
	case score >= 40:
		return "Expert"
	case score >= 30:
		return "Senior"
	case score >= 20:
		return "Mid-level"
	case score >= 10:
		return "Junior"
	default:
		return "Entry"
	}
}

func BuildChartData(profiles []NamedProfile) *dto.ChartData {
	skillFreq := map[string]int{}
	techFreq := map[string]int{}
	degreeTypes := map[string]int{}
	levels := map[string]int{}
	totalProjects := 0
	comparison := make([]dto.ResumeComparison, 0, len(profiles))

	for _, np := range profiles {
		p := np.Profile
		name := p.ContactInfo.FullName
		if name == "" {
			name = "N/A"
		}
		level := ExperienceLevel(p)
		levels[level]++

		row := dto.ResumeComparison{
			Name:            name,
			SkillsCount:     len(p.Skills.TechnicalSkills),
			ProjectsCount:   len(p.Projects),
			ExperienceCount: len(p.WorkExperience),
			Education:       []dto.EducationEntry{},
			ExperienceLevel: level,
		}
		for _, edu := range p.Education {
			if edu.Degree != "" {
				degreeTypes[strings.SplitN(edu.Degree, " in ", 2)[0]]++
			}
			var year any = "N/A"
			if edu.GraduationYear != 0 {
				year = edu.GraduationYear
			}
			row.Education = append(row.Education, dto.EducationEntry{
				Degree:      orNA(edu.Degree),
				Institution: orNA(edu.Institution),
				Year:        year,
			})
		}
		for _, s := range p.Skills.TechnicalSkills {
			skillFreq[s]++
		}
		totalProjects += len(p.Projects)
		for _, pr := range p.Projects {
			for _, tech := range pr.Technologies {
				techFreq[tech]++
			}
		}
		comparison = append(comparison, row)
	}

	experience := make([]dto.NameValue, 0, len(experienceLevels))
	for _, l := range experienceLevels {
		experience = append(experience, dto.NameValue{Name: l, Value: levels[l]})
	}

	return &dto.ChartData{
		SummaryStats: dto.SummaryStats{
			TotalResumes:  len(profiles),
			TotalSkills:   len(skillFreq),
			TotalProjects: totalProjects,
		},
		SkillsData: dto.SkillsData{
			TopSkills:         topN(skillFreq, 10),
			SkillDistribution: distribution(skillFreq, skillCategories),
		},
		ExperienceData: experience,
		EducationData:  topN(degreeTypes, 0),
		TechnologyData: dto.TechnologyData{
			TopTechnologies:        topN(techFreq, 8),
			TechnologyDistribution: distribution(techFreq, technologyCategories),
		},
		ResumeComparison: comparison,
	}
}

// topN sorts by count descending then name; n <= 0 keeps everything.
func topN(freq map[string]int, n int) []dto.NameCount {
	out := make([]dto.NameCount, 0, len(freq))
	for name, count := range freq {
		out = append(out, dto.NameCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// distribution counts distinct names containing any keyword of each category.
func distribution(freq map[string]int, categories []category) []dto.NameValue {
	out := make([]dto.NameValue, 0, len(categories))
	for _, c := range categories {
		n := 0
		for name := range freq {
			lower := strings.ToLower(name)
			for _, kw := range c.keywords {
				if strings.Contains(lower, kw) {
					n++
					break
				}
			}
		}
		out = append(out, dto.NameValue{Name: c.name, Value: n})
	}
	return out
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
