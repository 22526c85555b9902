package repository

import (
	"context"

	"github.com/fadilmartias/resume-scanner/internal/model"
	"gorm.io/gorm"
)

type RankingRepository struct {
	db *gorm.DB
}

func NewRankingRepository(db *gorm.DB) *RankingRepository {
	return &RankingRepository{db}
}

// ReplaceLatest swaps the stored ranking for rows in one transaction.
func (r *RankingRepository) ReplaceLatest(ctx context.Context, rows []model.RankedCandidate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.RankedCandidate{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

func (r *RankingRepository) Latest(ctx context.Context) ([]model.RankedCandidate, error) {
	var rows []model.RankedCandidate
	err := r.db.WithContext(ctx).Order("rank").Find(&rows).Error
	return rows, err
}
