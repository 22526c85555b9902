package usecase

import (
	"context"
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/fadilmartias/resume-scanner/internal/dto"
	"github.com/fadilmartias/resume-scanner/internal/response"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	unrankedRank    = 999
)

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

type CandidateUsecase struct {
	resumes  *ResumeUsecase
	rankings *RankingUsecase
	now      func() time.Time
}

func NewCandidateUsecase(resumes *ResumeUsecase, rankings *RankingUsecase) *CandidateUsecase {
	return &CandidateUsecase{resumes: resumes, rankings: rankings, now: time.Now}
}

// List filters, sorts and paginates the analysed candidates, merging in the
// latest ranking when one exists.
func (uc *CandidateUsecase) List(ctx context.Context, q dto.CandidateQuery) ([]dto.CandidateDTO, *response.Pagination, error) {
	all, err := uc.candidates(ctx)
	if err != nil {
		return nil, nil, err
	}

	filtered := make([]dto.CandidateDTO, 0, len(all))
	for _, c := range all {
		if matchesName(c.Name, q.Search) &&
			matchesSkills(c.Skills, q.Skills, q.MatchAll) &&
			matchesExperience(c.Years, q.Experience) &&
			matchesEducation(c.FullResume, q.Education) {
			filtered = append(filtered, c)
		}
	}
	sortCandidates(filtered, q.SortBy, q.SortDir)

	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	page := response.NewPagination(q.Page, pageSize, int64(len(filtered)))
	lo, hi := page.Bounds()
	return filtered[lo:hi], page, nil
}

// Skills returns every distinct technical skill, case-insensitively
// deduplicated and sorted.
func (uc *CandidateUsecase) Skills(ctx context.Context) ([]string, error) {
	profiles, err := uc.resumes.Profiles(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]string{}
	for _, p := range profiles {
		for _, s := range p.Profile.Skills.TechnicalSkills {
			s = strings.TrimSpace(s)
			key := strings.ToLower(s)
			if s == "" {
				continue
			}
			if _, ok := seen[key]; !ok {
				seen[key] = s
			}
		}
	}
	skills := make([]string, 0, len(seen))
	for _, s := range seen {
		skills = append(skills, s)
	}
	sort.Slice(skills, func(i, j int) bool {
		return strings.ToLower(skills[i]) < strings.ToLower(skills[j])
	})
	return skills, nil
}

func (uc *CandidateUsecase) candidates(ctx context.Context) ([]dto.CandidateDTO, error) {
	profiles, err := uc.resumes.Profiles(ctx)
	if err != nil {
		return nil, err
	}
	ranking, err := uc.rankings.Latest(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.CandidateDTO, 0, len(profiles))
	for _, p := range profiles {
		c := dto.CandidateDTO{
			Filename:   p.Filename,
			Name:       p.Profile.ContactInfo.FullName,
			Email:      p.Profile.ContactInfo.Email,
			Location:   p.Profile.ContactInfo.Location,
			Years:      YearsOfExperience(p.Profile.WorkExperience, uc.now()),
			Skills:     p.Profile.Skills.TechnicalSkills,
			FullResume: p.Profile,
		}
		if c.Name == "" {
			c.Name = p.Filename
		}
		if len(p.Profile.Education) > 0 {
			c.Education = p.Profile.Education[0].Degree
		}
		if r, ok := ranking[p.Filename]; ok {
			rank, pct := r.Rank, r.MatchPercentage
			c.Rank = &rank
			c.MatchPercentage = &pct
			_ = json.Unmarshal(r.MatchingSkills, &c.MatchingSkills)
			_ = json.Unmarshal(r.Gaps, &c.Gaps)
		}
		out = append(out, c)
	}
	return out, nil
}

// YearsOfExperience spans the earliest start year to the latest end year
// found in the work history. An empty or non-numeric end date such as
// "Present" counts as the current year.
func YearsOfExperience(history []dto.WorkExperience, now time.Time) int {
	first, last := 0, 0
	for _, w := range history {
		start := parseYear(w.StartDate)
		if start == 0 {
			continue
		}
		end := parseYear(w.EndDate)
		if end == 0 {
			end = now.Year()
		}
		if first == 0 || start < first {
			first = start
		}
		if end > last {
			last = end
		}
	}
	if first == 0 || last < first {
		return 0
	}
	return last - first
}

func parseYear(s string) int {
	m := yearPattern.FindString(s)
	if m == "" {
		return 0
	}
	y, _ := strconv.Atoi(m)
	return y
}

// matchesName accepts a case-insensitive substring of the full name, or any
// name token within a small edit distance of the search term.
func matchesName(name, search string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	name = strings.ToLower(name)
	if strings.Contains(name, search) {
		return true
	}
	maxDist := 1
	if utf8.RuneCountInString(search) >= 6 {
		maxDist = 2
	}
	for _, token := range strings.Fields(name) {
		if levenshtein.ComputeDistance(token, search) <= maxDist {
			return true
		}
	}
	return false
}

func matchesSkills(have, want []string, all bool) bool {
	if len(want) == 0 {
		return true
	}
	set := make(map[string]bool, len(have))
	for _, s := range have {
		set[strings.ToLower(strings.TrimSpace(s))] = true
	}
	for _, w := range want {
		ok := set[strings.ToLower(strings.TrimSpace(w))]
		if ok && !all {
			return true
		}
		if !ok && all {
			return false
		}
	}
	return all
}

func matchesExperience(years int, buckets []string) bool {
	if len(buckets) == 0 {
		return true
	}
	for _, b := range buckets {
		switch strings.TrimSpace(b) {
		case "0-2":
			if years >= 0 && years <= 2 {
				return true
			}
		case "3-5":
			if years >= 3 && years <= 5 {
				return true
			}
		case "5+":
			if years > 5 {
				return true
			}
		}
	}
	return false
}

func matchesEducation(p *dto.ResumeProfile, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	for _, edu := range p.Education {
		degree := strings.ToLower(edu.Degree)
		for _, t := range terms {
			if t = strings.ToLower(strings.TrimSpace(t)); t != "" && strings.Contains(degree, t) {
				return true
			}
		}
	}
	return false
}

func sortCandidates(cs []dto.CandidateDTO, by, dir string) {
	desc := strings.EqualFold(dir, "desc")
	rankOf := func(c dto.CandidateDTO) int {
		if c.Rank == nil {
			return unrankedRank
		}
		return *c.Rank
	}
	matchOf := func(c dto.CandidateDTO) float64 {
		if c.MatchPercentage == nil {
			return 0
		}
		return *c.MatchPercentage
	}

	var cmp func(a, b dto.CandidateDTO) int
	switch strings.ToLower(by) {
	case "match":
		// highest match first unless asc is asked for explicitly
		desc = !strings.EqualFold(dir, "asc")
		cmp = func(a, b dto.CandidateDTO) int { return compareFloat(matchOf(a), matchOf(b)) }
	case "name":
		cmp = func(a, b dto.CandidateDTO) int { return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) }
	default:
		cmp = func(a, b dto.CandidateDTO) int { return rankOf(a) - rankOf(b) }
	}

	sort.SliceStable(cs, func(i, j int) bool {
		c := cmp(cs[i], cs[j])
		if c == 0 {
			return cs[i].Filename < cs[j].Filename
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
