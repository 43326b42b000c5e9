package apierr

import (
	"errors"
	"testing"

	"github.com/corvidlabs/tbot/internal/wire"
)

func TestClassifyKnownStatus(t *testing.T) {
	err := Classify(429, wire.APIResponse{Description: "Too Many Requests"})

	if err.Kind != KindTooManyRequests {
		t.Fatalf("expected KindTooManyRequests, got %s", err.Kind)
	}

	if !err.Retryable {
		t.Fatal("429 should be retryable")
	}

	if err.RetryAfterSec != 5 {
		t.Fatalf("expected default retry_after 5, got %d", err.RetryAfterSec)
	}
}

func TestClassifyRetryAfterOverride(t *testing.T) {
	err := Classify(429, wire.APIResponse{Parameters: wire.ResponseParams{RetryAfter: 30}})

	if err.RetryAfterSec != 30 {
		t.Fatalf("expected response's retry_after to override the default, got %d", err.RetryAfterSec)
	}
}

func TestClassifyUnknownStatus(t *testing.T) {
	err := Classify(418, wire.APIResponse{})

	if err.Retryable || err.Critical {
		t.Fatal("unknown statuses must be non-retryable and non-critical")
	}

	if err.Kind.String() != "Unknown" {
		t.Fatalf("expected Unknown kind, got %s", err.Kind)
	}
}

func TestClassifyCriticalStatuses(t *testing.T) {
	for _, status := range []int{401, 409} {
		if err := Classify(status, wire.APIResponse{}); !err.Critical {
			t.Fatalf("status %d should be classified critical", status)
		}
	}
}

func TestWrappedErrorsUnwrap(t *testing.T) {
	cause := errors.New("boom")

	cases := []error{
		&FileProcessingError{Cause: cause},
		&ResultConversionError{Cause: cause},
		&EventHandlerError{Cause: cause},
		&FilterEvaluationError{Cause: cause},
		&MaxRetriesExceededError{Attempts: 3, LastError: cause},
	}

	for _, err := range cases {
		if !errors.Is(err, cause) {
			t.Fatalf("%T should unwrap to its cause", err)
		}
	}
}
