package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/fadilmartias/resume-scanner/internal/dto"
	"github.com/fadilmartias/resume-scanner/internal/model"
	"github.com/fadilmartias/resume-scanner/internal/repository"
	"github.com/fadilmartias/resume-scanner/internal/service"
	"github.com/fadilmartias/resume-scanner/internal/similarity"
	"github.com/fadilmartias/resume-scanner/internal/util"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

const (
	MethodGemini     = "Gemini AI"
	MethodOpenRouter = "OpenRouter"
	MethodCosine     = "Cosine Similarity"
)

type RankingUsecase struct {
	resumes     *ResumeUsecase
	rankings    *repository.RankingRepository
	gemini      service.GeminiServiceInterface
	openRouter  service.OpenRouterServiceInterface
	concurrency int
}

func NewRankingUsecase(resumes *ResumeUsecase, rankings *repository.RankingRepository, gemini service.GeminiServiceInterface, openRouter service.OpenRouterServiceInterface, concurrency int) *RankingUsecase {
	if concurrency < 1 {
		concurrency = 1
	}
	return &RankingUsecase{resumes: resumes, rankings: rankings, gemini: gemini, openRouter: openRouter, concurrency: concurrency}
}

const matchPrompt = `Job Description:
%s

Resume:
%s

TASK: Evaluate how well this resume matches the job description.
REQUIREMENTS:
1. Provide a match percentage (0-100%%)
2. List key matching skills and experiences
3. Identify any significant gaps
4. Explain your reasoning briefly

Respond in JSON format:
{
    "match_percentage": float,
    "matching_skills": list,
    "gaps": list,
    "reasoning": string
}`

// Rank scores every analysed resume against jobDescription. The language
// model is tried first, then OpenRouter, then TF-IDF cosine similarity; the
// first method that ranks at least one resume wins.
func (uc *RankingUsecase) Rank(ctx context.Context, jobDescription string) (*dto.RankingResponse, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return nil, fmt.Errorf("%w: job_description is required", ErrInvalidInput)
	}
	profiles, err := uc.resumes.Profiles(ctx)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, ErrNoResumes
	}

	method := MethodGemini
	ranked := uc.rankWith(ctx, jobDescription, profiles, func(ctx context.Context, prompt string) (string, error) {
		return uc.gemini.GenerateJSON(ctx, prompt)
	})
	if len(ranked) == 0 && uc.openRouter != nil && uc.openRouter.Enabled() {
		slog.Warn("gemini ranking produced no results, falling back", "fallback", MethodOpenRouter)
		method = MethodOpenRouter
		ranked = uc.rankWith(ctx, jobDescription, profiles, func(ctx context.Context, prompt string) (string, error) {
			out, err := uc.openRouter.Complete(ctx, "You are an expert technical recruiter. Reply with JSON only.", prompt)
			if err != nil {
				return "", err
			}
			return util.CleanJSON(out)
		})
	}
	if len(ranked) == 0 {
		slog.Warn("language model ranking produced no results, falling back", "fallback", MethodCosine)
		method = MethodCosine
		ranked = rankByCosine(jobDescription, profiles)
	}

	sortRanked(ranked)
	uc.persist(ctx, method, jobDescription, ranked)
	return &dto.RankingResponse{RankingMethod: method, RankedResumes: ranked}, nil
}

// Latest returns the most recently persisted ranking keyed by filename.
func (uc *RankingUsecase) Latest(ctx context.Context) (map[string]model.RankedCandidate, error) {
	rows, err := uc.rankings.Latest(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]model.RankedCandidate, len(rows))
	for _, r := range rows {
		out[r.Filename] = r
	}
	return out, nil
}

func (uc *RankingUsecase) rankWith(ctx context.Context, jobDescription string, profiles []NamedProfile, complete func(context.Context, string) (string, error)) []dto.RankedResume {
	var (
		mu     sync.Mutex
		ranked []dto.RankedResume
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.concurrency)
	for _, p := range profiles {
		g.Go(func() error {
			out, err := complete(gctx, fmt.Sprintf(matchPrompt, jobDescription, p.Profile.Text()))
			if err != nil {
				slog.Warn("ranking resume failed", "file", p.Filename, "error", err)
				return nil
			}
			item, err := parseMatch(out)
			if err != nil {
				slog.Warn("unusable ranking response", "file", p.Filename, "error", err)
				return nil
			}
			item.Filename = p.Filename
			item.FullResume = p.Profile
			mu.Lock()
			ranked = append(ranked, item)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return ranked
}

// parseMatch reads the model's JSON verdict. match_percentage is required
// and may arrive as a number or a string such as "85%".
func parseMatch(raw string) (dto.RankedResume, error) {
	if !gjson.Valid(raw) {
		return dto.RankedResume{}, util.ErrInvalidJSON
	}
	res := gjson.Parse(raw)
	if res.IsArray() {
		res = res.Get("0")
	}
	pct := res.Get("match_percentage")
	if !pct.Exists() {
		return dto.RankedResume{}, fmt.Errorf("match_percentage missing")
	}
	value := pct.Float()
	if pct.Type == gjson.String {
		v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(pct.String(), "%")), 64)
		if err != nil {
			return dto.RankedResume{}, fmt.Errorf("match_percentage %q: %w", pct.String(), err)
		}
		value = v
	}
	return dto.RankedResume{
		MatchPercentage: math.Max(0, math.Min(100, value)),
		MatchingSkills:  stringArray(res.Get("matching_skills")),
		Gaps:            stringArray(res.Get("gaps")),
		Reasoning:       res.Get("reasoning").String(),
	}, nil
}

func stringArray(r gjson.Result) []string {
	out := []string{}
	if !r.Exists() {
		return out
	}
	if !r.IsArray() {
		if s := strings.TrimSpace(r.String()); s != "" {
			out = append(out, s)
		}
		return out
	}
	for _, v := range r.Array() {
		if s := strings.TrimSpace(v.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func rankByCosine(jobDescription string, profiles []NamedProfile) []dto.RankedResume {
	docs := make([]string, len(profiles))
	for i, p := range profiles {
		// extracted text carries what the structured profile dropped
		docs[i] = strings.TrimSpace(p.Profile.Text() + "\n" + p.RawText)
	}
	scores := similarity.Scores(jobDescription, docs)
	jd := strings.ToLower(jobDescription)

	ranked := make([]dto.RankedResume, len(profiles))
	for i, p := range profiles {
		matching := []string{}
		for _, skill := range p.Profile.Skills.TechnicalSkills {
			if s := strings.ToLower(strings.TrimSpace(skill)); s != "" && strings.Contains(jd, s) {
				matching = append(matching, skill)
			}
		}
		ranked[i] = dto.RankedResume{
			Filename:        p.Filename,
			MatchPercentage: math.Round(scores[i]*10000) / 100,
			MatchingSkills:  matching,
			Gaps:            []string{},
			Reasoning:       fmt.Sprintf("Cosine similarity between job description and resume text: %.4f", scores[i]),
			FullResume:      p.Profile,
		}
	}
	return ranked
}

// sortRanked orders by match percentage descending, then filename, and
// assigns 1-based ranks.
func sortRanked(ranked []dto.RankedResume) {
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].MatchPercentage != ranked[j].MatchPercentage {
			return ranked[i].MatchPercentage > ranked[j].MatchPercentage
		}
		return ranked[i].Filename < ranked[j].Filename
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
}

func (uc *RankingUsecase) persist(ctx context.Context, method, jobDescription string, ranked []dto.RankedResume) {
	runID := uuid.New()
	rows := make([]model.RankedCandidate, 0, len(ranked))
	for _, r := range ranked {
		skills, _ := json.Marshal(r.MatchingSkills)
		gaps, _ := json.Marshal(r.Gaps)
		rows = append(rows, model.RankedCandidate{
			RunID:           runID,
			Filename:        r.Filename,
			Rank:            r.Rank,
			MatchPercentage: r.MatchPercentage,
			MatchingSkills:  datatypes.JSON(skills),
			Gaps:            datatypes.JSON(gaps),
			Reasoning:       r.Reasoning,
			Method:          method,
			JobDescription:  jobDescription,
		})
	}
	if err := uc.rankings.ReplaceLatest(ctx, rows); err != nil {
		slog.Error("persisting ranking failed", "error", err)
	}
}
