package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure surfaced by an adapter, the summary client or the
// coordinator wraps exactly one of these.
var (
	// ErrValidation indicates a bad repository URL or an unsupported file.
	ErrValidation = errors.New("validation error")

	// ErrDecode indicates a file that could not be read as text.
	ErrDecode = errors.New("decode error")

	// ErrNetwork indicates a failed or timed out README fetch.
	ErrNetwork = errors.New("network error")

	// ErrSummaryGeneration indicates a failed summary request.
	ErrSummaryGeneration = errors.New("summary generation error")
)

// Summary generation sub-kinds; each also matches ErrSummaryGeneration.
var (
	ErrPayloadTooLarge   = fmt.Errorf("%w: payload too large", ErrSummaryGeneration)
	ErrUpstreamTimeout   = fmt.Errorf("%w: upstream timeout", ErrSummaryGeneration)
	ErrUpstreamError     = fmt.Errorf("%w: upstream error", ErrSummaryGeneration)
	ErrMalformedResponse = fmt.Errorf("%w: malformed response", ErrSummaryGeneration)
)

var (
	// ErrStaleResult is returned to waiters of a summary request whose document
	// was replaced before the result arrived.
	ErrStaleResult = errors.New("summary result is stale")

	// ErrSuperseded is returned by a load that was overtaken by a newer load.
	ErrSuperseded = errors.New("load superseded by a newer document")
)

// Error pairs an error kind with the message shown to the user.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Invalid builds a validation error with a user-facing message.
func Invalid(message string) error {
	return &Error{Kind: ErrValidation, Message: message}
}

// Wrap builds an error of the given kind with a user-facing message and cause.
func Wrap(kind error, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// UserMessage returns the single message shown for a failing operation.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	switch {
	case errors.Is(err, ErrValidation):
		return "The input is not valid."
	case errors.Is(err, ErrDecode):
		return "Could not read the file as text."
	case errors.Is(err, ErrNetwork):
		return "Failed to fetch repository. Please try again."
	case errors.Is(err, ErrPayloadTooLarge):
		return "The document is too large to summarize."
	case errors.Is(err, ErrUpstreamTimeout):
		return "The summary service took too long to respond. Please try again."
	case errors.Is(err, ErrSummaryGeneration):
		return "Failed to generate summary. Please try again."
	default:
		return "Something went wrong. Please try again."
	}
}
