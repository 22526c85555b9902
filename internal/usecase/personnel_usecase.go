package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fadilmartias/resume-scanner/internal/dto"
	"github.com/fadilmartias/resume-scanner/internal/model"
	"github.com/fadilmartias/resume-scanner/internal/repository"
	"github.com/fadilmartias/resume-scanner/internal/service"
	"gorm.io/datatypes"
)

type PersonnelUsecase struct {
	repo   *repository.PersonnelRepository
	gemini service.GeminiServiceInterface
}

func NewPersonnelUsecase(repo *repository.PersonnelRepository, gemini service.GeminiServiceInterface) *PersonnelUsecase {
	return &PersonnelUsecase{repo: repo, gemini: gemini}
}

func (uc *PersonnelUsecase) Select(ctx context.Context, req dto.SelectedPersonnel) error {
	if !json.Valid(req.Profile) {
		return fmt.Errorf("%w: profile must be a JSON object", ErrInvalidInput)
	}
	return uc.repo.Upsert(ctx, &model.SelectedPersonnel{
		ResumeID:        req.ResumeID,
		Profile:         datatypes.JSON(req.Profile),
		SelectionReason: req.SelectionReason,
		SelectionDate:   req.SelectionDate,
	})
}

// Selected returns the pool keyed by resume id.
func (uc *PersonnelUsecase) Selected(ctx context.Context) (map[string]dto.SelectedPersonnel, error) {
	rows, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]dto.SelectedPersonnel, len(rows))
	for _, r := range rows {
		out[r.ResumeID] = dto.SelectedPersonnel{
			ResumeID:        r.ResumeID,
			Profile:         json.RawMessage(r.Profile),
			SelectionReason: r.SelectionReason,
			SelectionDate:   r.SelectionDate,
		}
	}
	return out, nil
}

const biasPrompt = `Analyze the following set of selected candidate profiles for a %s position
for potential biases. The job description is:

"%s"

Return your analysis in the following JSON structure ONLY:
{
    "summary": "Overall summary of the bias analysis",
    "fairness_score": 7.5,
    "bias_metrics": {
        "gender": {
            "representation": {"male": 65, "female": 30, "other": 5},
            "industry_benchmark": {"male": 60, "female": 35, "other": 5},
            "findings": "Description of gender-related patterns or imbalances",
            "recommendations": "Suggestions to improve gender diversity"
        }
    },
    "recommendations": ["Recommendation 1", "Recommendation 2", "Recommendation 3"]
}
fairness_score is a score from 1-10. Repeat the bias_metrics entry for each requested category.

Ensure your analysis covers these requested bias categories: %s

For each category:
1. Identify any patterns or imbalances in the selected candidates
2. Quantify the representation (e.g., percentages, ratios)
3. Compare against industry standards or expected distributions
4. Suggest improvements to reduce unintentional bias
5. Provide a summary of the analysis and a fairness score from 1-10

IMPORTANT: Be objective, data-driven, and fair in your analysis. Do not make assumptions
beyond what's in the data. If certain information is not available for some candidates,
note that in your analysis as a potential source of bias itself.

Analysis Data: %s`

type selectionMetadata struct {
	ResumeID        string `json:"resume_id"`
	SelectionReason string `json:"selection_reason"`
	SelectionDate   string `json:"selection_date"`
}

// AnalyzeBias asks the model to audit the selected pool and returns its JSON
// report untouched apart from fence cleanup.
func (uc *PersonnelUsecase) AnalyzeBias(ctx context.Context, req dto.BiasAnalysisRequest) (json.RawMessage, error) {
	rows, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoPersonnel
	}
	types := req.AnalysisTypes
	if len(types) == 0 {
		types = dto.DefaultBiasAnalysisTypes
	}

	profiles := make([]json.RawMessage, 0, len(rows))
	metadata := make([]selectionMetadata, 0, len(rows))
	for _, r := range rows {
		profiles = append(profiles, json.RawMessage(r.Profile))
		if r.SelectionReason != "" {
			metadata = append(metadata, selectionMetadata{r.ResumeID, r.SelectionReason, r.SelectionDate})
		}
	}
	data, err := json.Marshal(map[string]any{
		"profiles":           profiles,
		"selection_metadata": metadata,
		"job_title":          req.JobTitle,
		"job_description":    req.JobDescription,
		"analysis_types":     types,
	})
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(biasPrompt, req.JobTitle, req.JobDescription, strings.Join(types, ", "), data)
	out, err := uc.gemini.GenerateJSON(ctx, prompt)
	if err != nil {
		slog.Error("bias analysis failed", "error", err)
		return nil, fmt.Errorf("error analyzing bias: %w", err)
	}
	return json.RawMessage(out), nil
}
