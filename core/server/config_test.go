package server_test

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"bulk-manager/core/mapping"
	"bulk-manager/core/reconcile"
	"bulk-manager/core/server"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConfig(t *testing.T) {
	c := server.Config{Port: "9090", BodyLimitMB: 2}
	assert.Equal(t, ":9090", c.Address())
	assert.Equal(t, 2<<20, c.BodyLimit())
	assert.Equal(t, 16<<20, server.Config{}.BodyLimit())
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"InvalidMapping", fmt.Errorf("%w: bad", mapping.ErrInvalid), 400},
		{"SourceUnavailable", &reconcile.SourceUnavailableError{EntityType: "notes", Err: errors.New("401")}, 502},
		{"Cancelled", context.Canceled, 503},
		{"Other", errors.New("boom"), 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, server.StatusFor(tt.err))
		})
	}
}

func TestConfirmedAndFail(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		if server.Confirmed(c) {
			return c.SendString("confirmed")
		}
		return server.Fail(c, zap.NewNop(), "not confirmed", fmt.Errorf("%w: confirm first", mapping.ErrInvalid))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/?confirm=true", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}
