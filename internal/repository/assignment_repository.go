package repository

import (
	"context"

	"github.com/fadilmartias/resume-scanner/internal/model"
	"gorm.io/gorm"
)

type AssignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db}
}

func (r *AssignmentRepository) Save(ctx context.Context, candidate, repositoryName string) error {
	return r.db.WithContext(ctx).Save(&model.RepoAssignment{
		CandidateIdentifier: candidate,
		RepositoryName:      repositoryName,
	}).Error
}

func (r *AssignmentRepository) Find(ctx context.Context, candidate string) (*model.RepoAssignment, error) {
	var a model.RepoAssignment
	err := r.db.WithContext(ctx).First(&a, "candidate_identifier = ?", candidate).Error
	return &a, err
}
