package model

import (
	"time"

	"gorm.io/datatypes"
)

type SelectedPersonnel struct {
	ResumeID        string         `gorm:"type:varchar(255);primaryKey" json:"resume_id"`
	Profile         datatypes.JSON `gorm:"type:jsonb" json:"profile"`
	SelectionReason string         `gorm:"type:text" json:"selection_reason,omitempty"`
	SelectionDate   string         `gorm:"type:varchar(64)" json:"selection_date"`
	CreatedAt       time.Time      `json:"-"`
	UpdatedAt       time.Time      `json:"-"`
}

func (SelectedPersonnel) TableName() string {
	return "selected_personnel"
}
