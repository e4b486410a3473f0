package serverutils

import (
	"errors"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

type askBody struct {
	Question string `validate:"required,max=20"`
	Rating   int    `validate:"min=1,max=5"`
	Email    string `validate:"omitempty,email"`
}

func TestValidateRequestPasses(t *testing.T) {
	err := ValidateRequest(&askBody{Question: "How much overtime?", Rating: 4})
	if err != nil {
		t.Errorf("expected valid request, got %v", err)
	}
}

func TestValidateRequestFlattensFailures(t *testing.T) {
	tests := []struct {
		name string
		req  askBody
		want []string
	}{
		{
			name: "missing required",
			req:  askBody{Rating: 3},
			want: []string{"Question is required"},
		},
		{
			name: "over maximum",
			req:  askBody{Question: strings.Repeat("q", 21), Rating: 3},
			want: []string{"Question exceeds maximum of 20"},
		},
		{
			name: "under minimum",
			req:  askBody{Question: "q", Rating: 0},
			want: []string{"Rating is below minimum of 1"},
		},
		{
			name: "bad email",
			req:  askBody{Question: "q", Rating: 3, Email: "not-an-email"},
			want: []string{"Email must be a valid email"},
		},
		{
			name: "multiple joined",
			req:  askBody{},
			want: []string{"Question is required", "Rating is below minimum of 1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(&tt.req)
			if err == nil {
				t.Fatal("expected validation error")
			}

			var fiberErr *fiber.Error
			if !errors.As(err, &fiberErr) {
				t.Fatalf("expected *fiber.Error, got %T", err)
			}
			if fiberErr.Code != fiber.StatusBadRequest {
				t.Errorf("code = %d, want 400", fiberErr.Code)
			}
			for _, fragment := range tt.want {
				if !strings.Contains(fiberErr.Message, fragment) {
					t.Errorf("message %q missing %q", fiberErr.Message, fragment)
				}
			}
		})
	}
}
