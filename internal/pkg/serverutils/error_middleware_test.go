package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestStatusFromMessage(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want int
	}{
		{"not found", "session not found or access denied", fiber.StatusNotFound},
		{"forbidden", "forbidden for this role", fiber.StatusForbidden},
		{"access denied", "access denied", fiber.StatusForbidden},
		{"bad credentials", "invalid credentials", fiber.StatusUnauthorized},
		{"unauthorized", "unauthorized request", fiber.StatusUnauthorized},
		{"duplicate", "golden answer already exists", fiber.StatusConflict},
		{"validation", "Question is required", fiber.StatusBadRequest},
		{"length cap", "Question exceeds maximum of 500", fiber.StatusBadRequest},
		{"invalid input", "invalid feedback rating", fiber.StatusBadRequest},
		{"unknown", "connection reset by peer", fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFromMessage(tt.msg); got != tt.want {
				t.Errorf("statusFromMessage(%q) = %d, want %d", tt.msg, got, tt.want)
			}
		})
	}
}

func errorApp(handler fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/x", handler)
	return app
}

func decodeError(t *testing.T, body io.Reader) ErrorBody {
	t.Helper()
	var eb ErrorBody
	if err := json.NewDecoder(body).Decode(&eb); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return eb
}

func TestErrorHandlerServiceError(t *testing.T) {
	app := errorApp(func(c *fiber.Ctx) error {
		return errors.New("session not found or access denied")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/x", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	eb := decodeError(t, resp.Body)
	if eb.Success || eb.Code != fiber.StatusNotFound || eb.Message != "session not found or access denied" {
		t.Errorf("body = %+v", eb)
	}
}

func TestErrorHandlerKeepsFiberError(t *testing.T) {
	app := errorApp(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/x", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusTeapot {
		t.Errorf("status = %d, want 418", resp.StatusCode)
	}
	eb := decodeError(t, resp.Body)
	if eb.Message != "short and stout" {
		t.Errorf("message = %q", eb.Message)
	}
}

func TestErrorHandlerHidesInternalDetail(t *testing.T) {
	app := errorApp(func(c *fiber.Ctx) error {
		return errors.New("pq: relation qa_messages does not exist")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/x", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
	eb := decodeError(t, resp.Body)
	if eb.Message != "internal server error" {
		t.Errorf("message = %q, internal detail must not leak", eb.Message)
	}
}

func TestErrorHandlerPassesSuccess(t *testing.T) {
	app := errorApp(func(c *fiber.Ctx) error {
		return c.JSON(SuccessResponse("ok", fiber.Map{"n": 1}))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/x", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
