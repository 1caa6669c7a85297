package errors

import (
	"errors"
	"net/http"
	"strings"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
)

// Error is an API error carrying the HTTP status it should map to
type Error struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *Error) Error() string {
	return e.Message
}

// New creates a new Error
func New(message string, status int) *Error {
	return &Error{Message: message, Status: status}
}

var (
	ErrInternalServerError = New("internal server error", http.StatusInternalServerError)
	ErrBadRequest          = New("bad request", http.StatusBadRequest)
	ErrNotFound            = New("resource not found", http.StatusNotFound)
	ErrUnauthorized        = New("unauthorized", http.StatusUnauthorized)
	ErrInvalidPassword     = New("invalid email or password", http.StatusUnprocessableEntity)

	InActiveUserError = errors.New("user is inactive")
)

// GetUniqueContraintError maps a unique-violation DB error to a friendly one
func GetUniqueContraintError(err error) *Error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "email"):
		return New("email already exists", http.StatusConflict)
	case strings.Contains(msg, "telephone"), strings.Contains(msg, "phone"):
		return New("phone number already exists", http.StatusConflict)
	case strings.Contains(msg, "username"):
		return New("username already exists", http.StatusConflict)
	default:
		return New(msg, http.StatusConflict)
	}
}

// ErrorHandler is the gin-rate-limit hook for throttled requests
func ErrorHandler(c *gin.Context, info ratelimit.Info) {
	c.JSON(http.StatusTooManyRequests, gin.H{
		"error": "too many requests, try again in " + time.Until(info.ResetTime).Round(time.Second).String(),
	})
	c.Abort()
}
