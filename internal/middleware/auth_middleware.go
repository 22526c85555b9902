package middleware

import (
	"strings"

	"github.com/fadilmartias/resume-scanner/internal/config"
	"github.com/fadilmartias/resume-scanner/internal/usecase"
	"github.com/fadilmartias/resume-scanner/internal/util"
	"github.com/gofiber/fiber/v2"
)

const ClaimsKey = "claims"

type TokenParser interface {
	ParseToken(raw string) (*usecase.Claims, error)
}

// RequireRole rejects requests without a valid bearer token for one of
// roles. Browsers cannot set headers on WebSocket upgrades, so the token is
// also read from ?token=. When auth is disabled every request passes.
func RequireRole(cfg *config.AuthConfig, parser TokenParser, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !cfg.Enabled {
			return c.Next()
		}

		raw := bearerToken(c.Get(fiber.HeaderAuthorization))
		if raw == "" {
			raw = c.Query("token")
		}
		if raw == "" {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusUnauthorized,
				Message: "Authentication required",
			})
		}

		claims, err := parser.ParseToken(raw)
		if err != nil {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusUnauthorized,
				Message: "Invalid or expired token",
			}, err)
		}
		if len(roles) > 0 && !hasRole(claims.Role, roles) {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusForbidden,
				Message: "You do not have access to this resource",
			})
		}

		c.Locals(ClaimsKey, claims)
		return c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func hasRole(role string, allowed []string) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
