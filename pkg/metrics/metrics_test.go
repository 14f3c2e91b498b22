package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_UsesRouteTemplate(t *testing.T) {
	m := New("test")

	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/product/:id", func(c *fiber.Ctx) error {
		if c.Params("id") == "404" {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found"})
		}
		return c.SendString("ok")
	})

	for _, target := range []string{"/product/1", "/product/2", "/product/404"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(m.requests.WithLabelValues("GET", "/product/:id", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues("GET", "/product/:id", "404")))
}

func TestOutboxCounters(t *testing.T) {
	m := New("test")

	m.EventPublished()
	m.EventPublished()
	m.EventFailed()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.outbox.WithLabelValues("published")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.outbox.WithLabelValues("failed")))
}

func TestHandler(t *testing.T) {
	m := New("test")
	m.EventPublished()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `test_outbox_events_total{result="published"} 1`)
}
