package handler

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/JulioFS/zforum/internal/dto"
	"github.com/JulioFS/zforum/internal/service"
	"github.com/JulioFS/zforum/internal/utils"
)

// ChannelHandler provides HTTP endpoints for the channel registry.
type ChannelHandler struct {
	channels    service.ChannelService
	memberships service.MembershipService
	logger      zerolog.Logger
}

// NewChannelHandler constructs a handler instance.
func NewChannelHandler(channels service.ChannelService, memberships service.MembershipService, logger zerolog.Logger) *ChannelHandler {
	return &ChannelHandler{
		channels:    channels,
		memberships: memberships,
		logger:      logger.With().Str("component", "channel_handler").Logger(),
	}
}

// Register binds the channel routes. authRequired guards mutations;
// authOptional lets anonymous readers through while still binding admin
// identities.
func (h *ChannelHandler) Register(router fiber.Router, authRequired, authOptional fiber.Handler) {
	router.Get("/", authOptional, h.list)
	router.Post("/", authRequired, h.create)
	router.Get("/:tag", authOptional, h.getByTag)
	router.Put("/:id", authRequired, h.update)

	router.Get("/:id/admins", authRequired, h.listAdmins)
	router.Post("/:id/admins", authRequired, h.grantAdmin)
	router.Delete("/:id/admins/:uid", authRequired, h.revokeAdmin)

	router.Get("/:id/membership", authRequired, h.membershipStatus)
	router.Post("/:id/membership", authRequired, h.requestMembership)
	router.Get("/:id/membership/requests", authRequired, h.listPendingMemberships)
	router.Put("/:id/membership/:uid", authRequired, h.grantMembership)
	router.Delete("/:id/membership/:uid", authRequired, h.revokeMembership)
}

func (h *ChannelHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}

	response, err := h.channels.List(withRequestContext(c), identityFromContext(c), page, pageSize)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "channels", response)
}

func (h *ChannelHandler) create(c *fiber.Ctx) error {
	actor := identityFromContext(c)
	if actor == nil {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.ChannelCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.channels.Create(withRequestContext(c), actor, payload, bannerFile(c))
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "channel created", response)
}

func (h *ChannelHandler) getByTag(c *fiber.Ctx) error {
	tag := c.Params("tag")

	response, err := h.channels.GetByTag(withRequestContext(c), tag, identityFromContext(c))
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "channel", response)
}

func (h *ChannelHandler) update(c *fiber.Ctx) error {
	actor := identityFromContext(c)
	if actor == nil {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ChannelUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.channels.Update(withRequestContext(c), id, actor, payload, bannerFile(c))
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "channel updated", response)
}

func (h *ChannelHandler) listAdmins(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	admins, err := h.channels.ListAdmins(withRequestContext(c), id, identityFromContext(c))
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "channel admins", admins)
}

func (h *ChannelHandler) grantAdmin(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload struct {
		UserID uint `json:"user_id"`
	}
	if err := c.BodyParser(&payload); err != nil || payload.UserID == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "user_id required")
	}

	if err := h.channels.GrantAdmin(withRequestContext(c), id, payload.UserID, identityFromContext(c)); err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "channel admin granted", nil)
}

func (h *ChannelHandler) revokeAdmin(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	userID, err := parseUintParam(c, "uid")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.channels.RevokeAdmin(withRequestContext(c), id, userID, identityFromContext(c)); err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "channel admin revoked", nil)
}

func (h *ChannelHandler) membershipStatus(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	status, err := h.memberships.Status(withRequestContext(c), id, identityFromContext(c))
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "membership status", status)
}

func (h *ChannelHandler) requestMembership(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.memberships.Request(withRequestContext(c), id, identityFromContext(c)); err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusAccepted, "membership requested", nil)
}

func (h *ChannelHandler) listPendingMemberships(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	pending, err := h.memberships.ListPending(withRequestContext(c), id, identityFromContext(c))
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "pending membership requests", pending)
}

func (h *ChannelHandler) grantMembership(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	userID, err := parseUintParam(c, "uid")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.memberships.Grant(withRequestContext(c), id, userID, identityFromContext(c)); err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "membership granted", nil)
}

func (h *ChannelHandler) revokeMembership(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	userID, err := parseUintParam(c, "uid")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.memberships.Revoke(withRequestContext(c), id, userID, identityFromContext(c)); err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "membership revoked", nil)
}

// bannerFile pulls the optional banner part from a multipart form; JSON
// requests simply have none.
func bannerFile(c *fiber.Ctx) *multipart.FileHeader {
	file, err := c.FormFile("banner")
	if err != nil {
		return nil
	}
	return file
}
