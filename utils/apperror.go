package utils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type ErrorKind string

const (
	KindUnauthenticated ErrorKind = "unauthenticated"
	KindForbidden       ErrorKind = "forbidden"
	KindNotFound        ErrorKind = "not_found"
	KindConflict        ErrorKind = "conflict"
	KindInvalid         ErrorKind = "invalid"
)

// AppError carries a precise kind plus a human-readable message. Nothing of
// the internals crosses the API boundary beyond these two fields.
type AppError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"error"`
}

func (e *AppError) Error() string { return e.Message }

func Unauthenticated(msg string) *AppError { return &AppError{Kind: KindUnauthenticated, Message: msg} }
func Forbidden(msg string) *AppError       { return &AppError{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) *AppError        { return &AppError{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) *AppError        { return &AppError{Kind: KindConflict, Message: msg} }
func Invalid(msg string) *AppError         { return &AppError{Kind: KindInvalid, Message: msg} }

func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindUnauthenticated:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	case KindConflict:
		return fiber.StatusConflict
	case KindInvalid:
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// KindOf extracts the kind, defaulting to "" for unknown errors.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// ErrorHandler is the fiber app-level error handler translating AppErrors to
// status codes and hiding everything else behind a generic 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.StatusCode()).JSON(appErr)
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
	})
}
