package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "booking not found",
			},
			expected: "NOT_FOUND: booking not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("database connection failed"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: database connection failed)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.appErr.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	appErr := Wrap(originalErr, CodeInternal, "wrapped", http.StatusInternalServerError)

	if errors.Unwrap(appErr) != originalErr {
		t.Errorf("Unwrap() should return original error")
	}
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"slot conflict", SlotConflict("2024-06-04_0900"), CodeSlotConflict, http.StatusConflict},
		{"not found", NotFoundWithID("Booking", "abc"), CodeNotFound, http.StatusNotFound},
		{"invalid state", InvalidState("only active bookings may move slot", "cancelled"), CodeInvalidState, http.StatusConflict},
		{"validation", Validation("Booking validation failed", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"store unavailable", StoreUnavailable(errors.New("connection reset")), CodeUnavailable, http.StatusServiceUnavailable},
		{"invalid input", InvalidInput("bad date"), CodeInvalidInput, http.StatusBadRequest},
		{"conflict", Conflict("order changed"), CodeConflict, http.StatusConflict},
		{"timeout", Timeout("took too long"), CodeTimeout, http.StatusGatewayTimeout},
		{"unavailable", Unavailable("kafka"), CodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, tt.err.Code)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, tt.err.StatusCode())
			}
		})
	}
}

func TestSlotConflict_Details(t *testing.T) {
	err := SlotConflict("2024-06-01_0930")

	if err.Details["slot_id"] != "2024-06-01_0930" {
		t.Errorf("expected slot_id detail, got %v", err.Details)
	}
}

func TestAppError_WithDetails(t *testing.T) {
	err := NotFound("Booking").WithDetails(map[string]any{"id": "123"})

	if err.Details["id"] != "123" {
		t.Errorf("expected details to contain id=123, got %v", err.Details)
	}
}

func TestIsAppError(t *testing.T) {
	appErr := NotFound("Booking")
	wrapped := fmt.Errorf("transaction failed: %w", appErr)

	if !IsAppError(appErr) {
		t.Errorf("IsAppError() should return true for AppError")
	}
	if !IsAppError(wrapped) {
		t.Errorf("IsAppError() should return true for a wrapped AppError")
	}
	if IsAppError(errors.New("regular error")) {
		t.Errorf("IsAppError() should return false for regular error")
	}
}

func TestHasCode(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", SlotConflict("2024-06-01_0930"))

	if !HasCode(wrapped, CodeSlotConflict) {
		t.Errorf("HasCode() should find SLOT_CONFLICT through wrapping")
	}
	if HasCode(wrapped, CodeNotFound) {
		t.Errorf("HasCode() should not match a different code")
	}
	if HasCode(errors.New("plain"), CodeSlotConflict) {
		t.Errorf("HasCode() should be false for non-AppError")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NotFound("Booking")
	if AsAppError(appErr) != appErr {
		t.Errorf("AsAppError() should return same AppError")
	}

	regularErr := errors.New("regular error")
	result := AsAppError(regularErr)
	if result.Code != CodeInternal {
		t.Errorf("AsAppError() should wrap regular error as internal error")
	}
	if result.Err != regularErr {
		t.Errorf("AsAppError() should wrap the original error")
	}
}

func TestAppError_ToJSON(t *testing.T) {
	err := SlotConflict("2024-06-01_0930")
	body := string(err.ToJSON())

	if !strings.Contains(body, CodeSlotConflict) {
		t.Errorf("ToJSON() should contain error code, got %s", body)
	}
	if !strings.Contains(body, "2024-06-01_0930") {
		t.Errorf("ToJSON() should contain details, got %s", body)
	}
}
