package repository

import (
	"context"

	"github.com/fadilmartias/resume-scanner/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PersonnelRepository struct {
	db *gorm.DB
}

func NewPersonnelRepository(db *gorm.DB) *PersonnelRepository {
	return &PersonnelRepository{db}
}

func (r *PersonnelRepository) Upsert(ctx context.Context, p *model.SelectedPersonnel) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "resume_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"profile", "selection_reason", "selection_date", "updated_at"}),
	}).Create(p).Error
}

func (r *PersonnelRepository) List(ctx context.Context) ([]model.SelectedPersonnel, error) {
	var rows []model.SelectedPersonnel
	err := r.db.WithContext(ctx).Order("resume_id").Find(&rows).Error
	return rows, err
}
