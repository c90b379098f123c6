package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/JulioFS/zforum/internal/dto"
	"github.com/JulioFS/zforum/internal/service"
	"github.com/JulioFS/zforum/internal/utils"
)

type stubTopicService struct {
	createTopic func(channelTag string, actor *service.Identity, payload dto.TopicCreateRequest) (dto.TopicResponse, error)
	createReply func(parentID uint, actor *service.Identity, payload dto.ReplyCreateRequest) (dto.TopicResponse, error)
	get         func(id uint, actor *service.Identity) (dto.TopicResponse, error)
	list        func(channelTag string, actor *service.Identity, page, pageSize int) (dto.TopicListResponse, error)
	upvote      func(id uint, actor *service.Identity) error
	moderate    func(id uint, actor *service.Identity, payload dto.TopicModerationRequest) (dto.TopicResponse, error)
}

func (s *stubTopicService) CreateTopic(_ context.Context, channelTag string, actor *service.Identity, payload dto.TopicCreateRequest) (dto.TopicResponse, error) {
	return s.createTopic(channelTag, actor, payload)
}

func (s *stubTopicService) CreateReply(_ context.Context, parentID uint, actor *service.Identity, payload dto.ReplyCreateRequest) (dto.TopicResponse, error) {
	return s.createReply(parentID, actor, payload)
}

func (s *stubTopicService) Get(_ context.Context, id uint, actor *service.Identity) (dto.TopicResponse, error) {
	return s.get(id, actor)
}

func (s *stubTopicService) List(_ context.Context, channelTag string, actor *service.Identity, page, pageSize int) (dto.TopicListResponse, error) {
	return s.list(channelTag, actor, page, pageSize)
}

func (s *stubTopicService) Upvote(_ context.Context, id uint, actor *service.Identity) error {
	return s.upvote(id, actor)
}

func (s *stubTopicService) Moderate(_ context.Context, id uint, actor *service.Identity, payload dto.TopicModerationRequest) (dto.TopicResponse, error) {
	return s.moderate(id, actor, payload)
}

func newTopicTestApp(svc service.TopicService, userID uint) *fiber.App {
	app := fiber.New()
	bind := func(c *fiber.Ctx) error {
		if userID != 0 {
			c.Locals("user_id", userID)
		}
		return c.Next()
	}
	handler := NewTopicHandler(svc, zerolog.Nop())
	handler.Register(app.Group("/channels"), app.Group("/topics"), bind, bind)
	return app
}

func decodeResponse(t *testing.T, resp *http.Response) utils.APIResponse {
	t.Helper()
	var body utils.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestTopicHandlerGet(t *testing.T) {
	svc := &stubTopicService{
		get: func(id uint, actor *service.Identity) (dto.TopicResponse, error) {
			require.Equal(t, uint(7), id)
			require.Nil(t, actor)
			return dto.TopicResponse{ID: 7, Title: "thread"}, nil
		},
	}
	app := newTopicTestApp(svc, 0)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/topics/7", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeResponse(t, resp)
	require.True(t, body.Success)
}

func TestTopicHandlerGetInvalidID(t *testing.T) {
	app := newTopicTestApp(&stubTopicService{}, 0)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/topics/abc", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTopicHandlerCreateTopicPassesIdentity(t *testing.T) {
	svc := &stubTopicService{
		createTopic: func(channelTag string, actor *service.Identity, payload dto.TopicCreateRequest) (dto.TopicResponse, error) {
			require.Equal(t, "gardening", channelTag)
			require.NotNil(t, actor)
			require.Equal(t, uint(21), actor.ID)
			require.Equal(t, "Hello", payload.Title)
			return dto.TopicResponse{ID: 1, Title: payload.Title, IsParent: true}, nil
		},
	}
	app := newTopicTestApp(svc, 21)

	req := httptest.NewRequest(http.MethodPost, "/channels/gardening/topics",
		strings.NewReader(`{"title":"Hello","content":"First"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestTopicHandlerCreateTopicAnonymous(t *testing.T) {
	app := newTopicTestApp(&stubTopicService{}, 0)

	req := httptest.NewRequest(http.MethodPost, "/channels/gardening/topics",
		strings.NewReader(`{"title":"Hello","content":"First"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTopicHandlerErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"forbidden", service.ErrNotAuthorized, http.StatusForbidden},
		{"missing topic", service.ErrTopicNotFound, http.StatusNotFound},
		{"missing channel", service.ErrChannelNotFound, http.StatusNotFound},
		{"read-only", service.ErrTopicReadOnly, http.StatusConflict},
		{"reply target", service.ErrNotAParent, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubTopicService{
				createReply: func(uint, *service.Identity, dto.ReplyCreateRequest) (dto.TopicResponse, error) {
					return dto.TopicResponse{}, tc.err
				},
			}
			app := newTopicTestApp(svc, 21)

			req := httptest.NewRequest(http.MethodPost, "/topics/5/replies",
				strings.NewReader(`{"content":"hi"}`))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestTopicHandlerModeration(t *testing.T) {
	svc := &stubTopicService{
		moderate: func(id uint, actor *service.Identity, payload dto.TopicModerationRequest) (dto.TopicResponse, error) {
			require.Equal(t, uint(9), id)
			require.NotNil(t, payload.IsVisible)
			require.False(t, *payload.IsVisible)
			require.Nil(t, payload.IsReadOnly)
			return dto.TopicResponse{ID: 9, IsVisible: false}, nil
		},
	}
	app := newTopicTestApp(svc, 11)

	req := httptest.NewRequest(http.MethodPatch, "/topics/9",
		strings.NewReader(`{"is_visible":false}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
