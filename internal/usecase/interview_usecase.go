package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fadilmartias/resume-scanner/internal/dto"
	"github.com/fadilmartias/resume-scanner/internal/model"
	"github.com/fadilmartias/resume-scanner/internal/repository"
	"github.com/fadilmartias/resume-scanner/internal/service"
	"github.com/fadilmartias/resume-scanner/internal/util"
	"gorm.io/datatypes"
)

type InterviewUsecase struct {
	repo   *repository.ChatRepository
	gemini service.GeminiServiceInterface
}

func NewInterviewUsecase(repo *repository.ChatRepository, gemini service.GeminiServiceInterface) *InterviewUsecase {
	return &InterviewUsecase{repo: repo, gemini: gemini}
}

func (uc *InterviewUsecase) SaveHistory(ctx context.Context, p dto.ChatHistoryPayload) error {
	history := p.History
	if history == nil {
		history = []dto.ChatHistoryItem{}
	}
	raw, err := json.Marshal(history)
	if err != nil {
		return err
	}
	return uc.repo.Upsert(ctx, &model.ChatHistory{
		Key:        model.ChatHistoryKey(p.ConfUID, p.HistoryUID),
		ConfUID:    p.ConfUID,
		HistoryUID: p.HistoryUID,
		History:    datatypes.JSON(raw),
		Timestamp:  p.Timestamp,
	})
}

// Histories returns every stored conversation keyed by "<conf_uid>_<history_uid>".
func (uc *InterviewUsecase) Histories(ctx context.Context) (map[string]dto.ChatHistoryPayload, error) {
	rows, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]dto.ChatHistoryPayload, len(rows))
	for _, r := range rows {
		var items []dto.ChatHistoryItem
		if err := json.Unmarshal(r.History, &items); err != nil {
			return nil, fmt.Errorf("decode history %s: %w", r.Key, err)
		}
		out[r.Key] = dto.ChatHistoryPayload{
			ConfUID:    r.ConfUID,
			HistoryUID: r.HistoryUID,
			History:    items,
			Timestamp:  r.Timestamp,
		}
	}
	return out, nil
}

const interviewPrompt = `Analyze the following interview chat history and provide a detailed report.
Include observations on the candidate's skills, communication style,
responses to specific questions, and any other relevant insights.

Return the report as a JSON object with the keys "summary", "skills",
"communication_style", "notable_responses", "strengths", "concerns" and
"recommendation".

Interview Chat History:
%s`

// Transcript flattens the stored conversations. With historyUID set only
// conversations whose key contains it are included, without separators.
func Transcript(histories []model.ChatHistory, historyUID string) (string, error) {
	var lines []string
	for _, h := range histories {
		if historyUID != "" && !strings.Contains(h.Key, historyUID) {
			continue
		}
		var items []dto.ChatHistoryItem
		if err := json.Unmarshal(h.History, &items); err != nil {
			return "", fmt.Errorf("decode history %s: %w", h.Key, err)
		}
		if historyUID == "" {
			lines = append(lines, fmt.Sprintf("--- Conversation: %s ---", h.Key))
		}
		for _, m := range items {
			name := m.Name
			if name == "" {
				name = "Unknown"
			}
			lines = append(lines, fmt.Sprintf("%s: %s", name, m.Content))
		}
		if historyUID == "" {
			lines = append(lines, "---")
		}
	}
	return strings.Join(lines, "\n"), nil
}

// Analyze produces a report over the transcript. The model is asked for
// JSON; a prose answer is wrapped as {"report": ...}.
func (uc *InterviewUsecase) Analyze(ctx context.Context, historyUID string) (json.RawMessage, error) {
	rows, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	transcript, err := Transcript(rows, historyUID)
	if err != nil {
		return nil, err
	}
	if transcript == "" {
		return nil, ErrNoInterviewHistory
	}

	out, err := uc.gemini.GenerateText(ctx, fmt.Sprintf(interviewPrompt, transcript))
	if err != nil {
		return nil, fmt.Errorf("error analyzing interview: %w", err)
	}
	if cleaned, err := util.CleanJSON(out); err == nil {
		return json.RawMessage(cleaned), nil
	}
	wrapped, err := json.Marshal(map[string]string{"report": strings.TrimSpace(out)})
	if err != nil {
		return nil, err
	}
	return wrapped, nil
}
