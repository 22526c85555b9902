package repository

import (
	"context"

	"github.com/fadilmartias/resume-scanner/internal/model"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResumeRepository struct {
	db *gorm.DB
}

func NewResumeRepository(db *gorm.DB) *ResumeRepository {
	return &ResumeRepository{db}
}

// Upsert stores the analysis keyed by filename, replacing a previous result
// for the same file. The embedding is replaced too, so a stale vector never
// outlives the profile it was computed from.
func (r *ResumeRepository) Upsert(ctx context.Context, analysis *model.ResumeAnalysis) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "filename"}},
		DoUpdates: clause.AssignmentColumns([]string{"stored_path", "profile", "error", "raw_text", "embedding", "updated_at"}),
	}).Create(analysis).Error
}

func (r *ResumeRepository) List(ctx context.Context) ([]model.ResumeAnalysis, error) {
	var analyses []model.ResumeAnalysis
	err := r.db.WithContext(ctx).Omit("embedding").Order("filename").Find(&analyses).Error
	return analyses, err
}

func (r *ResumeRepository) FindByFilename(ctx context.Context, filename string) (*model.ResumeAnalysis, error) {
	var a model.ResumeAnalysis
	err := r.db.WithContext(ctx).Omit("embedding").First(&a, "filename = ?", filename).Error
	return &a, err
}

func (r *ResumeRepository) UpdateEmbedding(ctx context.Context, filename string, embedding pgvector.Vector) error {
	return r.db.WithContext(ctx).Model(&model.ResumeAnalysis{}).
		Where("filename = ?", filename).
		Update("embedding", &embedding).Error
}

// SearchSimilar returns the stored resumes closest to embedding by cosine
// distance. Requires PostgreSQL with the vector extension.
func (r *ResumeRepository) SearchSimilar(ctx context.Context, embedding pgvector.Vector, topK int) ([]model.ResumeAnalysis, error) {
	var analyses []model.ResumeAnalysis
	err := r.db.WithContext(ctx).Raw(`
        SELECT id, filename, stored_path, profile, error, raw_text, created_at, updated_at
        FROM resume_analyses
        WHERE embedding IS NOT NULL AND error = ''
        ORDER BY embedding <=> ?
        LIMIT ?
    `, embedding, topK).Scan(&analyses).Error
	return analyses, err
}
