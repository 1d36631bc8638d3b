// Package clierr defines structured error types for CLI commands and the HTTP API.
// Errors carry a machine-readable code, a human-readable message,
// and optional details for agent consumption.
package clierr

import (
	"fmt"
	"net/http"
	"strconv"
)

// Error codes are uppercase and underscore-separated. They stay stable across minor versions.
const (
	TaskNotFound           = "TASK_NOT_FOUND"
	WorkspaceNotFound      = "WORKSPACE_NOT_FOUND"
	WorkspaceAlreadyExists = "WORKSPACE_ALREADY_EXISTS"
	InvalidInput           = "INVALID_INPUT"
	InvalidStrategy        = "INVALID_STRATEGY"
	InvalidDate            = "INVALID_DATE"
	InvalidImportance      = "INVALID_IMPORTANCE"
	InvalidTaskID          = "INVALID_TASK_ID"
	InvalidLabel           = "INVALID_LABEL"
	InvalidGroupBy         = "INVALID_GROUP_BY"
	TitleRequired          = "TITLE_REQUIRED"
	NoPriorAnalysis        = "NO_PRIOR_ANALYSIS"
	NotATerminal           = "NOT_A_TERMINAL"
	InternalError          = "INTERNAL_ERROR"
)

// Error represents a structured CLI error with a machine-readable code.
type Error struct {
	Code    string
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Message }

// New creates an Error with the given code and message.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithDetails returns the error with the given details map attached.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// ExitCode returns 2 for InternalError, 1 for all others.
func (e *Error) ExitCode() int {
	if e.Code == InternalError {
		return 2 //nolint:mnd // exit code 2 for internal errors
	}
	return 1
}

// HTTPStatus maps the error code onto a response status.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case InternalError:
		return http.StatusInternalServerError
	case TaskNotFound, WorkspaceNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

// SilentError signals an exit code without additional output.
// Used when results were already written to stdout.
type SilentError struct {
	Code int
}

// Error implements the error interface.
func (e *SilentError) Error() string { return "exit " + strconv.Itoa(e.Code) }
