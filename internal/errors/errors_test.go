package errors

import (
	stderrors "errors"
	"net/http"
	"testing"
)

func TestAppError_StatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected int
	}{
		{name: "validation", err: NewValidationError("bad input", nil), expected: http.StatusBadRequest},
		{name: "network", err: NewNetworkError("fetch failed", nil), expected: http.StatusBadGateway},
		{name: "ocr", err: NewOCRError("engine failed", nil), expected: http.StatusUnprocessableEntity},
		{name: "processing", err: NewProcessingError("decode failed", nil), expected: http.StatusUnprocessableEntity},
		{name: "timeout", err: NewTimeoutError("deadline hit", nil), expected: http.StatusGatewayTimeout},
		{name: "internal", err: NewInternalError("unexpected", nil), expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetStatusCode(tt.err); got != tt.expected {
				t.Errorf("GetStatusCode = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := NewNetworkError("fetch failed", cause)

	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to reach the cause")
	}
}

func TestAppError_Message(t *testing.T) {
	cause := stderrors.New("root cause")

	withCause := NewOCRError("recognition failed", cause)
	if withCause.Error() != "ocr: recognition failed (caused by: root cause)" {
		t.Errorf("unexpected message %q", withCause.Error())
	}

	withoutCause := NewValidationError("empty URL", nil)
	if withoutCause.Error() != "validation: empty URL" {
		t.Errorf("unexpected message %q", withoutCause.Error())
	}
}

func TestIsType(t *testing.T) {
	err := NewNetworkError("fetch failed", nil)

	if !IsType(err, ErrorTypeNetwork) {
		t.Error("expected network type match")
	}
	if IsType(err, ErrorTypeOCR) {
		t.Error("unexpected ocr type match")
	}
	if IsType(stderrors.New("plain"), ErrorTypeNetwork) {
		t.Error("plain errors have no type")
	}
}

func TestGetStatusCode_PlainError(t *testing.T) {
	if got := GetStatusCode(stderrors.New("plain")); got != http.StatusInternalServerError {
		t.Errorf("GetStatusCode = %d, want 500 fallback", got)
	}
}
