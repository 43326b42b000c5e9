// Package apierr holds the sealed error taxonomy the request pipeline classifies failures into.
package apierr

import (
	"fmt"

	"github.com/corvidlabs/tbot/internal/wire"
)

// Kind identifies one of the ten HTTP-status-derived error classes.
type Kind int

const (
	KindBadRequest Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindPayloadTooLarge
	KindTooManyRequests
	KindInternalServerError
	KindBadGateway
	KindGatewayTimeout
	kindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "BadRequest"
	case KindUnauthorized:
		return "Unauthorized"
	case KindForbidden:
		return "Forbidden"
	case KindNotFound:
		return "NotFound"
	case KindConflict:
		return "Conflict"
	case KindPayloadTooLarge:
		return "PayloadTooLarge"
	case KindTooManyRequests:
		return "TooManyRequests"
	case KindInternalServerError:
		return "InternalServerError"
	case KindBadGateway:
		return "BadGateway"
	case KindGatewayTimeout:
		return "GatewayTimeout"
	default:
		return "Unknown"
	}
}

// classification is one row of the table in spec §4.1.
type classification struct {
	kind             Kind
	retryable        bool
	critical         bool
	defaultRetryAfter int
}

//nolint:gochecknoglobals // Immutable lookup table, the error taxonomy itself.
var byStatus = map[int]classification{
	400: {KindBadRequest, false, false, 0},
	401: {KindUnauthorized, false, true, 0},
	403: {KindForbidden, false, false, 0},
	404: {KindNotFound, false, false, 0},
	409: {KindConflict, false, true, 0},
	413: {KindPayloadTooLarge, false, false, 0},
	429: {KindTooManyRequests, true, false, 5},
	500: {KindInternalServerError, true, false, 20},
	502: {KindBadGateway, true, false, 20},
	504: {KindGatewayTimeout, true, false, 20},
}

// TelegramError is a classified failure response from the Bot API.
type TelegramError struct {
	Kind          Kind
	HTTPStatus    int
	Description   string
	Retryable     bool
	Critical      bool
	RetryAfterSec int
}

func (e *TelegramError) Error() string {
	return fmt.Sprintf("telegram API error %d (%s): %s", e.HTTPStatus, e.Kind, e.Description)
}

// Classify maps an HTTP status and parsed response body to a TelegramError. Statuses outside the
// table (§4.1 is not exhaustive of every status Telegram could ever send) are treated as
// non-retryable, non-critical, under kindUnknown.
func Classify(httpStatus int, resp wire.APIResponse) *TelegramError {
	c, known := byStatus[httpStatus]
	if !known {
		c = classification{kindUnknown, false, false, 0}
	}

	retryAfter := c.defaultRetryAfter
	if resp.Parameters.RetryAfter != 0 {
		retryAfter = resp.Parameters.RetryAfter
	}

	return &TelegramError{
		Kind:          c.kind,
		HTTPStatus:    httpStatus,
		Description:   resp.Description,
		Retryable:     c.retryable,
		Critical:      c.critical,
		RetryAfterSec: retryAfter,
	}
}

// FileProcessingError wraps a failure while resolving file-bearing parameters.
type FileProcessingError struct{ Cause error }

func (e *FileProcessingError) Error() string { return "file processing: " + e.Cause.Error() }
func (e *FileProcessingError) Unwrap() error { return e.Cause }

// InvalidParamsError signals a caller-supplied parameter could not be serialized.
type InvalidParamsError struct{ Msg string }

func (e *InvalidParamsError) Error() string { return "invalid params: " + e.Msg }

// ResultConversionError wraps a failure in the caller-supplied result converter.
type ResultConversionError struct{ Cause error }

func (e *ResultConversionError) Error() string { return "result conversion: " + e.Cause.Error() }
func (e *ResultConversionError) Unwrap() error { return e.Cause }

// MaxRetriesExceededError is raised once the retry budget for a call is exhausted.
type MaxRetriesExceededError struct {
	Attempts  int
	LastError error
}

func (e *MaxRetriesExceededError) Error() string {
	return fmt.Sprintf("exceeded %d retries, last error: %s", e.Attempts, e.LastError)
}

func (e *MaxRetriesExceededError) Unwrap() error { return e.LastError }

// EventHandlerError wraps a panic recovered from inside a user handler.
type EventHandlerError struct{ Cause error }

func (e *EventHandlerError) Error() string { return "event handler: " + e.Cause.Error() }
func (e *EventHandlerError) Unwrap() error { return e.Cause }

// FilterEvaluationError wraps a filter that failed instead of returning a bool.
type FilterEvaluationError struct{ Cause error }

func (e *FilterEvaluationError) Error() string { return "filter evaluation: " + e.Cause.Error() }
func (e *FilterEvaluationError) Unwrap() error { return e.Cause }

// ErrClientNotInitialized is returned when a call is attempted before the shared HTTP client has
// been opened. It always propagates, regardless of CatchErrors.
type notInitializedError struct{}

func (notInitializedError) Error() string { return "telegram HTTP client is not initialized" }

//nolint:gochecknoglobals // Sentinel error.
var ErrClientNotInitialized error = notInitializedError{}
