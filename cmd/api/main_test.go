package main

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorApp(production bool) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: customErrorHandler(production)})
	app.Get("/internal", func(c *fiber.Ctx) error {
		return errors.New("mongo: connection refused at 10.0.0.5")
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "evaluation missing")
	})
	return app
}

func errorBody(t *testing.T, app *fiber.App, path string) (int, map[string]interface{}) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestCustomErrorHandler(t *testing.T) {
	code, body := errorBody(t, errorApp(false), "/internal")
	assert.Equal(t, fiber.StatusInternalServerError, code)
	assert.Equal(t, "mongo: connection refused at 10.0.0.5", body["error"])

	code, body = errorBody(t, errorApp(true), "/internal")
	assert.Equal(t, fiber.StatusInternalServerError, code)
	assert.Equal(t, "Internal Server Error", body["error"])
	assert.Equal(t, float64(fiber.StatusInternalServerError), body["code"])

	code, body = errorBody(t, errorApp(true), "/missing")
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Equal(t, "evaluation missing", body["error"])
}
