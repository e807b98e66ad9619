package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shareit-go/shareit/internal/pkg/domain"
)

// Envelope is the JSON body shape of every API response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success writes a 200 response with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// BadRequest writes a 400 response.
func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

// Unauthorized writes a 401 response.
func Unauthorized(c *gin.Context, message string) {
	Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

// Fail writes an error envelope with an explicit status and code.
func Fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, Envelope{Success: false, Error: &ErrorBody{Code: code, Message: message}})
}

// Error maps a domain error to its HTTP status. Errors outside the domain
// taxonomy are reported as 500 without leaking their message.
func Error(c *gin.Context, err error) {
	status, code := StatusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	_ = c.Error(err)
	Fail(c, status, code, message)
}

// StatusFor returns the HTTP status and error code for err.
func StatusFor(err error) (int, string) {
	switch {
	case domain.IsNotFound(err):
		return http.StatusNotFound, "NOT_FOUND"
	case domain.IsValidation(err):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case domain.IsConflict(err):
		return http.StatusConflict, "CONFLICT"
	case domain.IsForbidden(err):
		return http.StatusForbidden, "FORBIDDEN"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
