package handler

import (
	"github.com/fadilmartias/resume-scanner/internal/dto"
	"github.com/fadilmartias/resume-scanner/internal/usecase"
	"github.com/gofiber/fiber/v2"
)

type PersonnelHandler struct {
	uc *usecase.PersonnelUsecase
}

func NewPersonnelHandler(uc *usecase.PersonnelUsecase) *PersonnelHandler {
	return &PersonnelHandler{uc: uc}
}

func (h *PersonnelHandler) Upload(c *fiber.Ctx) error {
	var req dto.SelectedPersonnel
	if err := parse(c, &req); err != nil {
		return badRequest(c, err)
	}
	if err := h.uc.Select(c.UserContext(), req); err != nil {
		return fail(c, err, "Error uploading selected personnel")
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Personnel with ID " + req.ResumeID + " added to selected pool",
	})
}

func (h *PersonnelHandler) List(c *fiber.Ctx) error {
	selected, err := h.uc.Selected(c.UserContext())
	if err != nil {
		return fail(c, err, "Error retrieving selected personnel")
	}
	return c.JSON(selected)
}

func (h *PersonnelHandler) Bias(c *fiber.Ctx) error {
	var req dto.BiasAnalysisRequest
	if err := parse(c, &req); err != nil {
		return badRequest(c, err)
	}
	report, err := h.uc.AnalyzeBias(c.UserContext(), req)
	if err != nil {
		return fail(c, err, "Error analyzing bias")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(report)
}
