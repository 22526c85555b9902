package repository

import (
	"context"

	"github.com/fadilmartias/resume-scanner/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db}
}

func (r *ChatRepository) Upsert(ctx context.Context, h *model.ChatHistory) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"conf_uid", "history_uid", "history", "timestamp", "updated_at"}),
	}).Create(h).Error
}

func (r *ChatRepository) List(ctx context.Context) ([]model.ChatHistory, error) {
	var rows []model.ChatHistory
	err := r.db.WithContext(ctx).Order("key").Find(&rows).Error
	return rows, err
}
