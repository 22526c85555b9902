package model

import "time"

type RepoAssignment struct {
	CandidateIdentifier string    `gorm:"type:varchar(255);primaryKey" json:"candidate_identifier"`
	RepositoryName      string    `gorm:"type:varchar(255)" json:"repository_name"`
	UpdatedAt           time.Time `json:"updated_at"`
}
