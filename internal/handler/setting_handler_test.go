package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/JulioFS/zforum/internal/dto"
	"github.com/JulioFS/zforum/internal/service"
)

type stubSettingsService struct {
	set  func(name, value string) (dto.SettingResponse, error)
	list func() ([]dto.SettingResponse, error)
}

func (s *stubSettingsService) Seed(context.Context) error { return nil }

func (s *stubSettingsService) Get(_ context.Context, _, fallback string) string { return fallback }

func (s *stubSettingsService) Set(_ context.Context, name, value string) (dto.SettingResponse, error) {
	return s.set(name, value)
}

func (s *stubSettingsService) List(context.Context) ([]dto.SettingResponse, error) {
	return s.list()
}

func newSettingTestApp(svc service.SettingsService) *fiber.App {
	app := fiber.New()
	NewSettingHandler(svc, zerolog.Nop()).Register(app.Group("/admin/settings"))
	return app
}

func TestSettingHandlerList(t *testing.T) {
	svc := &stubSettingsService{
		list: func() ([]dto.SettingResponse, error) {
			return []dto.SettingResponse{{Name: "topics_per_page", Value: "50"}}, nil
		},
	}
	app := newSettingTestApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin/settings/", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSettingHandlerUpdate(t *testing.T) {
	svc := &stubSettingsService{
		set: func(name, value string) (dto.SettingResponse, error) {
			require.Equal(t, "topics_per_page", name)
			require.Equal(t, "25", value)
			return dto.SettingResponse{Name: name, Value: value}, nil
		},
	}
	app := newSettingTestApp(svc)

	req := httptest.NewRequest(http.MethodPut, "/admin/settings/topics_per_page",
		strings.NewReader(`{"value":"25"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSettingHandlerUpdateUnknown(t *testing.T) {
	svc := &stubSettingsService{
		set: func(string, string) (dto.SettingResponse, error) {
			return dto.SettingResponse{}, service.ErrSettingNotFound
		},
	}
	app := newSettingTestApp(svc)

	req := httptest.NewRequest(http.MethodPut, "/admin/settings/bogus",
		strings.NewReader(`{"value":"1"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
