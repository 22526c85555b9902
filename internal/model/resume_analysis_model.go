package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EmbeddingDimensions matches gemini-embedding-001.
const EmbeddingDimensions = 3072

type ResumeAnalysis struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Filename   string           `gorm:"type:varchar(255);uniqueIndex" json:"filename"`
	StoredPath string           `gorm:"type:text" json:"stored_path"`
	Profile    datatypes.JSON   `gorm:"type:jsonb" json:"profile"`
	Error      string           `gorm:"type:text" json:"error"`
	RawText    string           `gorm:"type:text" json:"-"`
	Embedding  *pgvector.Vector `gorm:"type:vector(3072)" json:"-"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func (r *ResumeAnalysis) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r *ResumeAnalysis) Failed() bool {
	return r.Error != "" || len(r.Profile) == 0
}
