package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/JulioFS/zforum/internal/dto"
	"github.com/JulioFS/zforum/internal/service"
	"github.com/JulioFS/zforum/internal/utils"
)

// TopicHandler provides HTTP endpoints for topics and replies.
type TopicHandler struct {
	topics service.TopicService
	logger zerolog.Logger
}

// NewTopicHandler constructs a handler instance.
func NewTopicHandler(topics service.TopicService, logger zerolog.Logger) *TopicHandler {
	return &TopicHandler{
		topics: topics,
		logger: logger.With().Str("component", "topic_handler").Logger(),
	}
}

// Register binds topic routes under two prefixes: channel-scoped listing
// and creation, plus id-scoped reads, replies, and moderation.
func (h *TopicHandler) Register(channels, topics fiber.Router, authRequired, authOptional fiber.Handler) {
	channels.Get("/:tag/topics", authOptional, h.list)
	channels.Post("/:tag/topics", authRequired, h.createTopic)

	topics.Get("/:id", authOptional, h.get)
	topics.Post("/:id/replies", authRequired, h.createReply)
	topics.Post("/:id/upvote", authRequired, h.upvote)
	topics.Patch("/:id", authRequired, h.moderate)
}

func (h *TopicHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}

	response, err := h.topics.List(withRequestContext(c), c.Params("tag"), identityFromContext(c), page, pageSize)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "topics", response)
}

func (h *TopicHandler) createTopic(c *fiber.Ctx) error {
	actor := identityFromContext(c)
	if actor == nil {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.TopicCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.topics.CreateTopic(withRequestContext(c), c.Params("tag"), actor, payload)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "topic created", response)
}

func (h *TopicHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.topics.Get(withRequestContext(c), id, identityFromContext(c))
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "topic", response)
}

func (h *TopicHandler) createReply(c *fiber.Ctx) error {
	actor := identityFromContext(c)
	if actor == nil {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ReplyCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.topics.CreateReply(withRequestContext(c), id, actor, payload)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "reply created", response)
}

func (h *TopicHandler) upvote(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.topics.Upvote(withRequestContext(c), id, identityFromContext(c)); err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "topic upvoted", nil)
}

func (h *TopicHandler) moderate(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.TopicModerationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.topics.Moderate(withRequestContext(c), id, identityFromContext(c), payload)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "topic updated", response)
}
