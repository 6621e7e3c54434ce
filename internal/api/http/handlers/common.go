package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helper-marketplace/internal/auth"
	"github.com/spec-kit/helper-marketplace/internal/domain"
	apperrors "github.com/spec-kit/helper-marketplace/pkg/util"
)

func bindJSON(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("", "invalid payload")
	}
	return nil
}

func principal(c *fiber.Ctx) (*domain.User, error) {
	user, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return user, nil
}
