package model

import (
	"time"

	"gorm.io/datatypes"
)

type ChatHistory struct {
	Key        string         `gorm:"type:varchar(255);primaryKey" json:"-"`
	ConfUID    string         `gorm:"type:varchar(255)" json:"conf_uid"`
	HistoryUID string         `gorm:"type:varchar(255);index" json:"history_uid"`
	History    datatypes.JSON `gorm:"type:jsonb" json:"history"`
	Timestamp  string         `gorm:"type:varchar(64)" json:"timestamp"`
	UpdatedAt  time.Time      `json:"-"`
}

func ChatHistoryKey(confUID, historyUID string) string {
	return confUID + "_" + historyUID
}
