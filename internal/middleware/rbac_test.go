package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func rbacApp(role interface{}) *fiber.App {
	app := fiber.New()
	app.Get("/admin", func(c *fiber.Ctx) error {
		if role != nil {
			c.Locals("user_role", role)
		}
		return c.Next()
	}, RequireRole("admin"), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})
	return app
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name string
		role interface{}
		want int
	}{
		{"matching role", "admin", http.StatusOK},
		{"case-insensitive", " ADMIN ", http.StatusOK},
		{"other role", "member", http.StatusForbidden},
		{"missing role", nil, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := rbacApp(tc.role).Test(httptest.NewRequest(http.MethodGet, "/admin", nil))
			require.NoError(t, err)
			require.Equal(t, tc.want, resp.StatusCode)
		})
	}
}
