package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RankedCandidate is one row of the most recent ranking run.
type RankedCandidate struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RunID           uuid.UUID      `gorm:"type:uuid;index" json:"run_id"`
	Filename        string         `gorm:"type:varchar(255);index" json:"filename"`
	Rank            int            `json:"rank"`
	MatchPercentage float64        `gorm:"type:float" json:"match_percentage"`
	MatchingSkills  datatypes.JSON `gorm:"type:jsonb" json:"matching_skills"`
	Gaps            datatypes.JSON `gorm:"type:jsonb" json:"gaps"`
	Reasoning       string         `gorm:"type:text" json:"reasoning"`
	Method          string         `gorm:"type:varchar(50)" json:"method"`
	JobDescription  string         `gorm:"type:text" json:"job_description"`
	CreatedAt       time.Time      `json:"created_at"`
}

func (r *RankedCandidate) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
