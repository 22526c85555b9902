package dto

import "encoding/json"

type SelectedPersonnel struct {
	ResumeID        string          `json:"resume_id" validate:"required"`
	Profile         json.RawMessage `json:"profile" validate:"required"`
	SelectionReason string          `json:"selection_reason,omitempty"`
	SelectionDate   string          `json:"selection_date" validate:"required"`
}
