package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIError is the error body returned by every JSON endpoint.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
}

// NewAPIError creates a new APIError instance
func NewAPIError(statusCode int, code string, message string, details string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
		Details:    details,
	}
}

func (e *APIError) Error() string {
	return e.Message
}

// RespondWithError sends the {success:false, message} contract plus the structured error.
func RespondWithError(c *gin.Context, err *APIError) {
	RespondWithErrorFields(c, err, nil)
}

// RespondWithErrorFields is RespondWithError with extra top-level fields.
func RespondWithErrorFields(c *gin.Context, err *APIError, extra gin.H) {
	body := gin.H{}
	for k, v := range extra {
		body[k] = v
	}
	body["success"] = false
	body["message"] = err.Message
	body["error"] = err
	c.JSON(err.StatusCode, body)
	c.Abort()
}

// RespondSuccess writes {success:true, message} merged with extra fields.
func RespondSuccess(c *gin.Context, message string, extra gin.H) {
	body := gin.H{"success": true, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

const (
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeConflict            = "CONFLICT"
	ErrCodeInternalServerError = "INTERNAL_SERVER_ERROR"
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodePersistenceFailed   = "PERSISTENCE_FAILED"
)

// RespondValidationFailed reports an input error. Input errors keep HTTP 200 so the
// front-end can read {success:false, message} without special casing.
func RespondValidationFailed(c *gin.Context, message string, details string) {
	RespondWithError(c, NewAPIError(http.StatusOK, ErrCodeValidationFailed, message, details))
}
