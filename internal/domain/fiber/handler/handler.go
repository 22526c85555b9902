package handler

import (
	"errors"
	"strings"
	"unicode"

	"github.com/fadilmartias/resume-scanner/internal/service"
	"github.com/fadilmartias/resume-scanner/internal/usecase"
	"github.com/fadilmartias/resume-scanner/internal/util"
	"github.com/gofiber/fiber/v2"
)

// statusFor maps usecase sentinels onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput),
		errors.Is(err, usecase.ErrMissingCredentials),
		errors.Is(err, usecase.ErrUnsupportedSource):
		return fiber.StatusBadRequest
	case errors.Is(err, usecase.ErrNoResumes),
		errors.Is(err, usecase.ErrNoPersonnel),
		errors.Is(err, usecase.ErrNoInterviewHistory),
		errors.Is(err, usecase.ErrFileNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, usecase.ErrEmailTaken):
		return fiber.StatusConflict
	case errors.Is(err, usecase.ErrInvalidCredentials),
		errors.Is(err, usecase.ErrInvalidToken):
		return fiber.StatusUnauthorized
	case errors.Is(err, service.ErrCircuitOpen):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// fail writes the error envelope. Client errors carry the error text as the
// message; server errors use fallback and keep the detail for dev_message.
func fail(c *fiber.Ctx, err error, fallback string) error {
	code := statusFor(err)
	message := fallback
	if code < fiber.StatusInternalServerError {
		message = sentence(err.Error())
	}
	return util.ErrorResponse(c, util.ErrorResponseFormat{Code: code, Message: message}, err)
}

// parse decodes and validates a JSON body. Failures are written with
// badRequest.
func parse(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return err
	}
	return util.ValidateStruct(dst)
}

func badRequest(c *fiber.Ctx, err error) error {
	var formErr *util.FormError
	if errors.As(err, &formErr) {
		return util.ErrorResponse(c, util.ErrorResponseFormat{}, err)
	}
	return util.ErrorResponse(c, util.ErrorResponseFormat{
		Code:    fiber.StatusBadRequest,
		Message: "Invalid request body",
	}, err)
}

func sentence(s string) string {
	for i, r := range s {
		return string(unicode.ToUpper(r)) + s[i+len(string(r)):]
	}
	return s
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
