package handler

import (
	"strings"
	"testing"
)

func TestValidator_ReportsJSONFieldNames(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&registerRequest{Name: "A", LastName: "Diaz", Email: "nope", Password: "12345678", Role: "CLIENT"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"name must be at least 2 characters", "email must be a valid email"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in %q", want, msg)
		}
	}
}

func TestValidator_AcceptsValidRequest(t *testing.T) {
	v := NewValidator()
	req := &donationRequest{Amount: 10, PaymentMethod: "NEQUI"}
	if err := v.Validate(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
