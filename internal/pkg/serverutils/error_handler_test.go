package serverutils

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Query string `json:"query" validate:"required,max=10"`
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/ok", func(c *fiber.Ctx) error { return c.JSON(SuccessResponse("fine", 42)) })
	app.Get("/missing", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusNotFound, "nope") })
	app.Get("/invalid", func(c *fiber.Ctx) error { return ValidateRequest(sampleRequest{}) })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("boom") })

	tests := []struct {
		path    string
		status  int
		message string
	}{
		{"/ok", 200, "fine"},
		{"/missing", 404, "nope"},
		{"/invalid", 400, "Validation failed"},
		{"/boom", 500, "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body Response[json.RawMessage]
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.message, body.Message)
			assert.Equal(t, tt.status == 200, body.Success)
		})
	}
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(sampleRequest{Query: "stack"}))

	err := ValidateRequest(sampleRequest{Query: "far too long for this"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "must be at most 10", ve.Fields["Query"])
}
