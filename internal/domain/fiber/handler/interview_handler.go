package handler

import (
	"errors"

	"github.com/fadilmartias/resume-scanner/internal/dto"
	"github.com/fadilmartias/resume-scanner/internal/usecase"
	"github.com/gofiber/fiber/v2"
)

type InterviewHandler struct {
	uc *usecase.InterviewUsecase
}

func NewInterviewHandler(uc *usecase.InterviewUsecase) *InterviewHandler {
	return &InterviewHandler{uc: uc}
}

func (h *InterviewHandler) UpdateHistory(c *fiber.Ctx) error {
	var req dto.ChatHistoryPayload
	if err := parse(c, &req); err != nil {
		return badRequest(c, err)
	}
	if err := h.uc.SaveHistory(c.UserContext(), req); err != nil {
		return fail(c, err, "Error updating chat history")
	}
	return c.JSON(fiber.Map{"message": "Chat history updated successfully"})
}

func (h *InterviewHandler) Histories(c *fiber.Ctx) error {
	histories, err := h.uc.Histories(c.UserContext())
	if err != nil {
		return fail(c, err, "Error retrieving chat history")
	}
	return c.JSON(histories)
}

// Analyze answers 200 with an error body when nothing matches, which the
// interview client expects.
func (h *InterviewHandler) Analyze(c *fiber.Ctx) error {
	report, err := h.uc.Analyze(c.UserContext(), c.Query("history_uid"))
	if errors.Is(err, usecase.ErrNoInterviewHistory) {
		return c.JSON(fiber.Map{"error": "No matching interview history found"})
	}
	if err != nil {
		return fail(c, err, "Error analyzing interview")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(report)
}

type ProjectHandler struct {
	uc *usecase.ProjectUsecase
}

func NewProjectHandler(uc *usecase.ProjectUsecase) *ProjectHandler {
	return &ProjectHandler{uc: uc}
}

func (h *ProjectHandler) Process(c *fiber.Ctx) error {
	var req dto.ProjectInputRequest
	if err := parse(c, &req); err != nil {
		return badRequest(c, err)
	}
	content, err := h.uc.Content(c.UserContext(), req.InputPath)
	if err != nil {
		return fail(c, err, "Error processing project")
	}
	return c.SendString(content)
}

func (h *ProjectHandler) Analyze(c *fiber.Ctx) error {
	var req dto.ProjectInputRequest
	if err := parse(c, &req); err != nil {
		return badRequest(c, err)
	}
	report, err := h.uc.Analyze(c.UserContext(), req.InputPath)
	if err != nil {
		return fail(c, err, "Error analyzing project")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(report)
}
