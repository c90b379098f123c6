package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/JulioFS/zforum/internal/config"
)

func TestRegisterExposesHealthAndMetrics(t *testing.T) {
	app := fiber.New()
	Register(app, config.Config{AppName: "zforum-test"}, Dependencies{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "zforum-test", resp.Header.Get("X-Application"))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegisterWithoutHandlersHasNoChannelRoutes(t *testing.T) {
	app := fiber.New()
	Register(app, config.Config{AppName: "zforum-test"}, Dependencies{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/channels/", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
