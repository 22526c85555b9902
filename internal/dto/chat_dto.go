package dto

type ChatHistoryItem struct {
	Role      string  `json:"role" validate:"required"`
	Timestamp string  `json:"timestamp" validate:"required"`
	Content   string  `json:"content"`
	Name      string  `json:"name" validate:"required"`
	Avatar    *string `json:"avatar"`
}

type ChatHistoryPayload struct {
	ConfUID    string            `json:"conf_uid" validate:"required"`
	HistoryUID string            `json:"history_uid" validate:"required"`
	History    []ChatHistoryItem `json:"history" validate:"dive"`
	Timestamp  string            `json:"timestamp" validate:"required"`
}
