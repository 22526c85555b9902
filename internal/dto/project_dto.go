package dto

type ProjectInputRequest struct {
	InputPath string `json:"input_path" validate:"required"`
}
