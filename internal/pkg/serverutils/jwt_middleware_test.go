package serverutils

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

// guardedApp exposes one route behind the given middlewares and reports the
// locals the chain resolved.
func guardedApp(middlewares ...fiber.Handler) *fiber.App {
	app := fiber.New()
	handlers := append(middlewares, func(c *fiber.Ctx) error {
		userId, _ := c.Locals("user_id").(string)
		role, _ := c.Locals("role").(string)
		return c.JSON(fiber.Map{"user_id": userId, "role": role})
	})
	app.Get("/guarded", handlers...)
	return app
}

func TestJwtMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	valid := signToken(t, "test-secret", jwt.MapClaims{"user_id": "u-1", "role": "reviewer"})
	forged := signToken(t, "wrong-secret", jwt.MapClaims{"user_id": "u-1", "role": "admin"})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer " + valid, fiber.StatusOK},
		{"missing header", "", fiber.StatusUnauthorized},
		{"not bearer", "Basic abc", fiber.StatusUnauthorized},
		{"forged signature", "Bearer " + forged, fiber.StatusUnauthorized},
		{"garbage token", "Bearer not.a.token", fiber.StatusUnauthorized},
	}

	app := guardedApp(JwtMiddleware)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/guarded", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestOptionalJwtMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := guardedApp(OptionalJwtMiddleware)

	// Anonymous requests pass straight through.
	resp, err := app.Test(httptest.NewRequest("GET", "/guarded", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("anonymous status = %d, want 200", resp.StatusCode)
	}

	// A presented but invalid token is rejected, not treated as anonymous.
	req := httptest.NewRequest("GET", "/guarded", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("bad token status = %d, want 401", resp.StatusCode)
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		allowed []string
		want    int
	}{
		{"role allowed", "curator", []string{"curator", "admin"}, fiber.StatusOK},
		{"second role allowed", "admin", []string{"curator", "admin"}, fiber.StatusOK},
		{"role rejected", "reviewer", []string{"curator", "admin"}, fiber.StatusForbidden},
		{"no role", "", []string{"curator"}, fiber.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRole := func(c *fiber.Ctx) error {
				if tt.role != "" {
					c.Locals("role", tt.role)
				}
				return c.Next()
			}
			app := guardedApp(setRole, RequireRole(tt.allowed...))

			resp, err := app.Test(httptest.NewRequest("GET", "/guarded", nil))
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestServiceKeyMiddleware(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("svc-key"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	t.Setenv("SERVICE_KEY_HASH", string(hash))

	tests := []struct {
		name string
		key  string
		want int
	}{
		{"correct key", "svc-key", fiber.StatusOK},
		{"wrong key", "other-key", fiber.StatusUnauthorized},
		{"missing key", "", fiber.StatusUnauthorized},
	}

	app := guardedApp(ServiceKeyMiddleware)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/guarded", nil)
			if tt.key != "" {
				req.Header.Set("X-Service-Key", tt.key)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}
