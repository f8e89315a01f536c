package errors

import (
	"fmt"
	"net/http"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
)

// Kind classifies an Error independently of its message.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindUnauthenticated   Kind = "unauthenticated"
	KindInvalidCredential Kind = "invalid_credential"
	KindForbidden         Kind = "forbidden"
	KindNotFound          Kind = "not_found"
	KindPersistence       Kind = "persistence"
	KindConflict          Kind = "conflict"
	KindRateLimited       Kind = "rate_limited"
)

type Error struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
	Kind    Kind   `json:"-"`
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports a match when target is an *Error of the same kind, so
// errors.Is(err, ErrForbidden) holds for every forbidden error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind == "" || e.Kind == "" {
		return t.Status == e.Status && t.Message == e.Message
	}
	return t.Kind == e.Kind
}

func New(message string, status int) *Error {
	return &Error{
		Message: message,
		Status:  status,
	}
}

func newKind(kind Kind, message string, status int) *Error {
	return &Error{Message: message, Status: status, Kind: kind}
}

func Validation(message string) *Error {
	return newKind(KindValidation, message, http.StatusBadRequest)
}

func Unauthenticated(message string) *Error {
	return newKind(KindUnauthenticated, message, http.StatusUnauthorized)
}

func InvalidCredential(message string) *Error {
	return newKind(KindInvalidCredential, message, http.StatusUnauthorized)
}

func Forbidden(message string) *Error {
	return newKind(KindForbidden, message, http.StatusForbidden)
}

func NotFound(message string) *Error {
	return newKind(KindNotFound, message, http.StatusNotFound)
}

func Conflict(message string) *Error {
	return newKind(KindConflict, message, http.StatusConflict)
}

// Persistence hides the store failure behind a generic message; the cause is
// kept for server-side logging only.
func Persistence(cause error) *Error {
	e := newKind(KindPersistence, "internal server error", http.StatusInternalServerError)
	e.cause = cause
	return e
}

var (
	ErrValidation        = Validation("validation failed")
	ErrUnauthenticated   = Unauthenticated("no token provided")
	ErrInvalidCredential = InvalidCredential("invalid token")
	ErrForbidden         = Forbidden("not allowed")
	ErrNotFound          = NotFound("not found")
	ErrPersistence       = Persistence(nil)
	ErrConflict          = Conflict("conflict")

	ErrBadRequest          = New("bad request", http.StatusBadRequest)
	ErrInternalServerError = New("internal server error", http.StatusInternalServerError)
)

// ErrorHandler is the rejection handler for the submission rate limiter.
func ErrorHandler(c *gin.Context, info ratelimit.Info) {
	e := newKind(KindRateLimited, fmt.Sprintf("too many requests, try again in %s", time.Until(info.ResetTime).Round(time.Second)), http.StatusTooManyRequests)
	c.AbortWithStatusJSON(e.Status, gin.H{
		"message":   e.Message,
		"data":      nil,
		"errors":    e.Message,
		"status":    http.StatusText(e.Status),
		"timestamp": time.Now().Format(time.RFC850),
	})
}
