package handler

import (
	"github.com/fadilmartias/resume-scanner/internal/dto"
	"github.com/fadilmartias/resume-scanner/internal/usecase"
	"github.com/fadilmartias/resume-scanner/internal/util"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	uc *usecase.AuthUsecase
}

func NewAuthHandler(uc *usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := parse(c, &req); err != nil {
		return badRequest(c, err)
	}
	user, err := h.uc.SignUp(c.UserContext(), req)
	if err != nil {
		return fail(c, err, "Failed to create account")
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Account created",
		Data:    user,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parse(c, &req); err != nil {
		return badRequest(c, err)
	}
	res, err := h.uc.Login(c.UserContext(), req)
	if err != nil {
		return fail(c, err, "Failed to log in")
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Logged in",
		Data:    res,
	})
}
