package main

import (
	"errors"
	"fmt"
)

// Error types surfaced to tool callers and HTTP clients.
var (
	ErrInvalidArguments = errors.New("invalid arguments")
	ErrInvalidInput     = errors.New("invalid input")
	ErrImageNotFound    = errors.New("image not found")
	ErrImageTooLarge    = errors.New("image exceeds size limit")
	ErrBodyTooLarge     = errors.New("request body too large")
	ErrInternal         = errors.New("internal error")
)

// ValidationError for input validation failures
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed for %s: %s (value: %v)", e.Field, e.Message, e.Value)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// ErrorResponse for agent-friendly error reporting
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Field   string            `json:"field,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// toErrorResponse converts errors to agent-friendly format
func toErrorResponse(err error) ErrorResponse {
	resp := ErrorResponse{
		Error: err.Error(),
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		resp.Field = vErr.Field
		if vErr.Value != nil {
			resp.Details = map[string]string{"value": fmt.Sprint(vErr.Value)}
		}
	}

	switch {
	case errors.Is(err, ErrInvalidArguments):
		resp.Code = "INVALID_ARGUMENTS"
	case errors.Is(err, ErrInvalidInput):
		resp.Code = "INVALID_INPUT"
	case errors.Is(err, ErrImageNotFound):
		resp.Code = "IMAGE_NOT_FOUND"
	case errors.Is(err, ErrImageTooLarge):
		resp.Code = "IMAGE_TOO_LARGE"
	case errors.Is(err, ErrBodyTooLarge):
		resp.Code = "BODY_TOO_LARGE"
	case errors.Is(err, ErrInternal):
		// never leak internals to the caller
		resp.Error = ErrInternal.Error()
		resp.Code = "INTERNAL"
	default:
		resp.Code = "UNKNOWN_ERROR"
	}

	return resp
}
