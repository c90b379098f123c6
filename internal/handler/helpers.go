package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/JulioFS/zforum/internal/middleware"
	"github.com/JulioFS/zforum/internal/service"
	"github.com/JulioFS/zforum/internal/utils"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	value := strings.TrimSpace(c.Params(key))
	if value == "" {
		return 0, errors.New(key + " required")
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.New("invalid " + key)
	}
	return uint(parsed), nil
}

// identityFromContext builds the caller identity bound by the JWT
// middleware. A nil return means the request is anonymous.
func identityFromContext(c *fiber.Ctx) *service.Identity {
	v := c.Locals("user_id")
	if v == nil {
		return nil
	}

	role := ""
	if r, ok := c.Locals("user_role").(string); ok {
		role = r
	}

	switch id := v.(type) {
	case uint:
		return &service.Identity{ID: id, Role: role}
	case int:
		if id < 0 {
			return nil
		}
		return &service.Identity{ID: uint(id), Role: role}
	}
	return nil
}

func withRequestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// sendServiceError maps service error kinds onto HTTP statuses. Not-found
// and unauthorized stay distinguishable only by message, never by payload
// detail, so private channel existence cannot be probed.
func sendServiceError(c *fiber.Ctx, err error) error {
	if ve, ok := service.AsValidationError(err); ok {
		return utils.SendValidationErrors(c, ve.Errors)
	}

	switch {
	case errors.Is(err, service.ErrNotAuthorized):
		return utils.SendError(c, fiber.StatusForbidden, "not authorized")
	case errors.Is(err, service.ErrChannelNotFound),
		errors.Is(err, service.ErrTopicNotFound),
		errors.Is(err, service.ErrSettingNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrTopicReadOnly),
		errors.Is(err, service.ErrNotAParent):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		return utils.SendError(c, fiber.StatusInternalServerError, err.Error())
	}
}
