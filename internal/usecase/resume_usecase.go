package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/fadilmartias/resume-scanner/internal/config"
	"github.com/fadilmartias/resume-scanner/internal/dto"
	"github.com/fadilmartias/resume-scanner/internal/model"
	"github.com/fadilmartias/resume-scanner/internal/repository"
	"github.com/fadilmartias/resume-scanner/internal/service"
	"github.com/fadilmartias/resume-scanner/internal/upload"
	"github.com/fadilmartias/resume-scanner/internal/util"
	"github.com/pgvector/pgvector-go"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ResumeUsecase struct {
	repo    *repository.ResumeRepository
	gemini  service.GeminiServiceInterface
	storage *config.StorageConfig
}

func NewResumeUsecase(repo *repository.ResumeRepository, gemini service.GeminiServiceInterface, storage *config.StorageConfig) *ResumeUsecase {
	return &ResumeUsecase{repo: repo, gemini: gemini, storage: storage}
}

// NamedProfile is a successfully analysed resume.
type NamedProfile struct {
	Filename string
	Profile  *dto.ResumeProfile
	RawText  string
}

// Analyze extracts a profile without storing anything.
func (uc *ResumeUsecase) Analyze(ctx context.Context, f *upload.File) (*dto.ResumeProfile, error) {
	return uc.gemini.ExtractProfile(ctx, f.SafeName, f.Data)
}

// Store saves the upload, analyses it and records the outcome under its
// sanitised name. Analysis failures are recorded as error entries and do not
// fail the call; only storage problems do.
func (uc *ResumeUsecase) Store(ctx context.Context, f *upload.File) error {
	if err := os.MkdirAll(uc.storage.UploadDir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(uc.storage.UploadDir, f.SafeName)
	if err := os.WriteFile(path, f.Data, 0o644); err != nil {
		return fmt.Errorf("save %s: %w", f.SafeName, err)
	}

	analysis := &model.ResumeAnalysis{Filename: f.SafeName, StoredPath: path}

	text, err := util.ExtractText(f.SafeName, f.Data)
	if err != nil {
		slog.Warn("text extraction failed", "file", f.SafeName, "error", err)
	}
	analysis.RawText = text

	profile, err := uc.gemini.ExtractProfile(ctx, f.SafeName, f.Data)
	if err != nil {
		slog.Error("resume analysis failed", "file", f.SafeName, "error", err)
		analysis.Error = "Error processing file: " + err.Error()
	} else {
		raw, err := json.Marshal(profile)
		if err != nil {
			return fmt.Errorf("encode profile: %w", err)
		}
		analysis.Profile = datatypes.JSON(raw)
	}

	if err := uc.repo.Upsert(ctx, analysis); err != nil {
		return fmt.Errorf("store analysis for %s: %w", f.SafeName, err)
	}

	if profile != nil {
		uc.embed(ctx, f.SafeName, text, profile)
	}
	return nil
}

// embed is best effort: a missing embedding only disables similarity search
// for this resume.
func (uc *ResumeUsecase) embed(ctx context.Context, filename, text string, profile *dto.ResumeProfile) {
	if text == "" {
		text = profile.Text()
	}
	vec, err := uc.gemini.GenerateEmbedding(ctx, text)
	if err != nil {
		slog.Warn("embedding failed", "file", filename, "error", err)
		return
	}
	if len(vec) != model.EmbeddingDimensions {
		slog.Warn("embedding has unexpected size", "file", filename, "dims", len(vec))
		return
	}
	if err := uc.repo.UpdateEmbedding(ctx, filename, pgvector.NewVector(vec)); err != nil {
		slog.Warn("storing embedding failed", "file", filename, "error", err)
	}
}

// Batch analyses files as they arrive, at most StorageConfig.AnalysisConcurrency
// at a time. Add blocks while the pool is full.
type Batch struct {
	uc  *ResumeUsecase
	ctx context.Context
	g   *errgroup.Group
}

func (uc *ResumeUsecase) NewBatch(ctx context.Context) *Batch {
	g, gctx := errgroup.WithContext(ctx)
	limit := uc.storage.AnalysisConcurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)
	return &Batch{uc: uc, ctx: gctx, g: g}
}

func (b *Batch) Add(f *upload.File) {
	b.g.Go(func() error {
		return b.uc.Store(b.ctx, f)
	})
}

func (b *Batch) Wait() error {
	return b.g.Wait()
}

// Results returns every stored outcome keyed by filename.
func (uc *ResumeUsecase) Results(ctx context.Context) (map[string]dto.ResumeResult, error) {
	rows, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	results := make(map[string]dto.ResumeResult, len(rows))
	for _, row := range rows {
		results[row.Filename] = toResult(row)
	}
	return results, nil
}

// Profiles returns the successfully analysed resumes ordered by filename.
func (uc *ResumeUsecase) Profiles(ctx context.Context) ([]NamedProfile, error) {
	rows, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	profiles := make([]NamedProfile, 0, len(rows))
	for _, row := range rows {
		res := toResult(row)
		if res.Profile == nil {
			continue
		}
		profiles = append(profiles, NamedProfile{Filename: row.Filename, Profile: res.Profile, RawText: row.RawText})
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Filename < profiles[j].Filename })
	return profiles, nil
}

// Similar returns the stored resumes nearest to query by embedding distance.
func (uc *ResumeUsecase) Similar(ctx context.Context, query string, limit int) ([]NamedProfile, error) {
	if limit < 1 || limit > 50 {
		limit = 5
	}
	vec, err := uc.gemini.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	rows, err := uc.repo.SearchSimilar(ctx, pgvector.NewVector(vec), limit)
	if err != nil {
		return nil, err
	}
	out := make([]NamedProfile, 0, len(rows))
	for _, row := range rows {
		if res := toResult(row); res.Profile != nil {
			out = append(out, NamedProfile{Filename: row.Filename, Profile: res.Profile})
		}
	}
	return out, nil
}

// FilePath resolves a stored upload by name.
func (uc *ResumeUsecase) FilePath(ctx context.Context, name string) (string, error) {
	safe := upload.SanitizeFilename(name)
	row, err := uc.repo.FindByFilename(ctx, safe)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrFileNotFound
		}
		return "", err
	}
	path := row.StoredPath
	if path == "" {
		path = filepath.Join(uc.storage.UploadDir, safe)
	}
	if _, err := os.Stat(path); err != nil {
		return "", ErrFileNotFound
	}
	return path, nil
}

func toResult(row model.ResumeAnalysis) dto.ResumeResult {
	if row.Failed() {
		msg := row.Error
		if msg == "" {
			msg = "Error processing file: no analysis result"
		}
		return dto.ResumeResult{Error: msg}
	}
	var profile dto.ResumeProfile
	if err := json.Unmarshal(row.Profile, &profile); err != nil {
		return dto.ResumeResult{Error: "Error processing file: " + err.Error()}
	}
	return dto.ResumeResult{Profile: &profile}
}
