package usecase

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/fadilmartias/resume-scanner/internal/dto"
	"github.com/fadilmartias/resume-scanner/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersonnelSelectAndList(t *testing.T) {
	ctx := context.Background()
	uc := NewPersonnelUsecase(repository.NewPersonnelRepository(newTestDB(t)), &fakeGemini{})

	err := uc.Select(ctx, dto.SelectedPersonnel{ResumeID: "r1", Profile: json.RawMessage(`{broken`), SelectionDate: "2025-01-01"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, uc.Select(ctx, dto.SelectedPersonnel{
		ResumeID:      "r1",
		Profile:       json.RawMessage(`{"contact_info":{"full_name":"Alice"}}`),
		SelectionDate: "2025-01-01",
	}))
	require.NoError(t, uc.Select(ctx, dto.SelectedPersonnel{
		ResumeID:        "r1",
		Profile:         json.RawMessage(`{"contact_info":{"full_name":"Alice A."}}`),
		SelectionReason: "strong Go",
		SelectionDate:   "2025-02-01",
	}))

	selected, err := uc.Selected(ctx)
	require.NoError(t, err)
	require.Len(t, selected, 1)
	assert.Equal(t, "strong Go", selected["r1"].SelectionReason)
	assert.JSONEq(t, `{"contact_info":{"full_name":"Alice A."}}`, string(selected["r1"].Profile))
}

func TestAnalyzeBias(t *testing.T) {
	ctx := context.Background()
	gemini := &fakeGemini{json: func(string) (string, error) {
		return `{"summary":"balanced","fairness_score":8}`, nil
	}}
	uc := NewPersonnelUsecase(repository.NewPersonnelRepository(newTestDB(t)), gemini)
	req := dto.BiasAnalysisRequest{JobTitle: "Backend Engineer", JobDescription: "Go services"}

	_, err := uc.AnalyzeBias(ctx, req)
	assert.ErrorIs(t, err, ErrNoPersonnel)

	require.NoError(t, uc.Select(ctx, dto.SelectedPersonnel{
		ResumeID:        "r1",
		Profile:         json.RawMessage(`{"contact_info":{"full_name":"Alice"}}`),
		SelectionReason: "referral",
		SelectionDate:   "2025-01-01",
	}))
	out, err := uc.AnalyzeBias(ctx, req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"summary":"balanced","fairness_score":8}`, string(out))

	prompt := gemini.lastPrompt()
	assert.Contains(t, prompt, "Backend Engineer position")
	assert.Contains(t, prompt, "gender, age, ethnicity, education, experience")
	assert.Contains(t, prompt, `"selection_reason":"referral"`)
}

func TestAnalyzeBiasModelFailure(t *testing.T) {
	ctx := context.Background()
	uc := NewPersonnelUsecase(repository.NewPersonnelRepository(newTestDB(t)), &fakeGemini{})
	require.NoError(t, uc.Select(ctx, dto.SelectedPersonnel{ResumeID: "r1", Profile: json.RawMessage(`{}`), SelectionDate: "2025-01-01"}))

	_, err := uc.AnalyzeBias(ctx, dto.BiasAnalysisRequest{JobTitle: "x", JobDescription: "y", AnalysisTypes: []string{"age"}})
	assert.ErrorIs(t, err, errFake)
}
