package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/JulioFS/zforum/internal/dto"
	"github.com/JulioFS/zforum/internal/service"
	"github.com/JulioFS/zforum/internal/utils"
)

// SettingHandler exposes the administrative system-settings surface.
type SettingHandler struct {
	settings service.SettingsService
	logger   zerolog.Logger
}

// NewSettingHandler constructs a handler instance.
func NewSettingHandler(settings service.SettingsService, logger zerolog.Logger) *SettingHandler {
	return &SettingHandler{
		settings: settings,
		logger:   logger.With().Str("component", "setting_handler").Logger(),
	}
}

// Register binds the settings routes. The caller is expected to mount this
// behind system-admin middleware.
func (h *SettingHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Put("/:name", h.update)
}

func (h *SettingHandler) list(c *fiber.Ctx) error {
	settings, err := h.settings.List(withRequestContext(c))
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "system settings", settings)
}

func (h *SettingHandler) update(c *fiber.Ctx) error {
	name := c.Params("name")
	if name == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "setting name required")
	}

	var payload dto.SettingUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.settings.Set(withRequestContext(c), name, payload.Value)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "system setting updated", response)
}
