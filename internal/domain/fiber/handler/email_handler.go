package handler

import (
	"github.com/fadilmartias/resume-scanner/internal/dto"
	"github.com/fadilmartias/resume-scanner/internal/usecase"
	"github.com/gofiber/fiber/v2"
)

type EmailHandler struct {
	uc *usecase.EmailUsecase
}

func NewEmailHandler(uc *usecase.EmailUsecase) *EmailHandler {
	return &EmailHandler{uc: uc}
}

func (h *EmailHandler) Individual(c *fiber.Ctx) error {
	var req dto.SendIndividualEmailRequest
	if err := parse(c, &req); err != nil {
		return badRequest(c, err)
	}
	res, err := h.uc.SendIndividual(c.UserContext(), req)
	if err != nil {
		return fail(c, err, "Failed to send email")
	}
	return c.JSON(res)
}

func (h *EmailHandler) Bulk(c *fiber.Ctx) error {
	var req dto.SendBulkEmailRequest
	if err := parse(c, &req); err != nil {
		return badRequest(c, err)
	}
	res, err := h.uc.SendBulk(c.UserContext(), req)
	if err != nil {
		return fail(c, err, "Error sending bulk emails")
	}
	return c.JSON(res)
}
