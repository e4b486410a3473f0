package integration

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"regassist-be/internal/bootstrap"
	"regassist-be/internal/config"
	"regassist-be/internal/dto"
	"regassist-be/internal/server"
	"regassist-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

// TestQASessionLifecycle walks the anonymous asker surface: create a session
// with a client key, list it, read the seeded welcome message, verify another
// client key cannot see it, and delete it.
func TestQASessionLifecycle(t *testing.T) {
	if err := godotenv.Load("../../.env"); err != nil {
		t.Logf("Warning: Could not load ../../.env: %v", err)
	}
	if os.Getenv("DB_CONNECTION_STRING") == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	cfg := config.Load()
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	container := bootstrap.NewContainer(db, cfg)
	srv := server.New(cfg, container)
	app := srv.GetApp()

	clientKey := "itest-" + uuid.New().String()

	// 1. Create a session
	req := httptest.NewRequest("POST", "/api/qa/v1/session", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-Key", clientKey)

	resp, err := app.Test(req, 10000)
	assert.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)

	var createEnvelope struct {
		Success bool                        `json:"success"`
		Data    dto.CreateQASessionResponse `json:"data"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&createEnvelope))
	resp.Body.Close()
	assert.True(t, createEnvelope.Success)
	sessionId := createEnvelope.Data.Id
	assert.NotEqual(t, uuid.Nil, sessionId)

	// 2. The session shows up in the owner's list
	req = httptest.NewRequest("GET", "/api/qa/v1/sessions", nil)
	req.Header.Set("X-Client-Key", clientKey)
	resp, err = app.Test(req, 10000)
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var listEnvelope struct {
		Data []dto.GetQASessionsResponse `json:"data"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&listEnvelope))
	resp.Body.Close()

	found := false
	for _, s := range listEnvelope.Data {
		if s.Id == sessionId {
			found = true
		}
	}
	assert.True(t, found, "created session missing from list")

	// 3. History starts with the welcome message
	req = httptest.NewRequest("GET", "/api/qa/v1/session/"+sessionId.String()+"/history", nil)
	req.Header.Set("X-Client-Key", clientKey)
	resp, err = app.Test(req, 10000)
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var historyEnvelope struct {
		Data []dto.GetQAHistoryResponse `json:"data"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&historyEnvelope))
	resp.Body.Close()
	if assert.NotEmpty(t, historyEnvelope.Data) {
		assert.Equal(t, "assistant", historyEnvelope.Data[0].Role)
		assert.NotEmpty(t, historyEnvelope.Data[0].Content)
	}

	// 4. A different client key cannot read the session
	req = httptest.NewRequest("GET", "/api/qa/v1/session/"+sessionId.String()+"/history", nil)
	req.Header.Set("X-Client-Key", "someone-else")
	resp, err = app.Test(req, 10000)
	assert.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
	resp.Body.Close()

	// 5. Requests without any identity are rejected
	req = httptest.NewRequest("GET", "/api/qa/v1/sessions", nil)
	resp, err = app.Test(req, 10000)
	assert.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
	resp.Body.Close()

	// 6. Delete the session; history is gone afterwards
	req = httptest.NewRequest("DELETE", "/api/qa/v1/session/"+sessionId.String(), nil)
	req.Header.Set("X-Client-Key", clientKey)
	resp, err = app.Test(req, 10000)
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	resp.Body.Close()

	req = httptest.NewRequest("GET", "/api/qa/v1/session/"+sessionId.String()+"/history", nil)
	req.Header.Set("X-Client-Key", clientKey)
	resp, err = app.Test(req, 10000)
	assert.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
	resp.Body.Close()

	t.Log("QA session lifecycle passed")
}
