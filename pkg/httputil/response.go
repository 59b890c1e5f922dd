package httputil

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/vet-tarapaca/booking-api/pkg/errors"
)

// Response wraps all API responses. The success flag mirrors the wire
// convention of the upstream scheduling service so the widget can treat
// both the same way.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents API error
type Error struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithError sends an error response, mapping the application error
// taxonomy onto HTTP status codes.
func RespondWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"
	var fields []string

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
		fields = appErr.Fields
		switch appErr.Code {
		case apperrors.ErrValidation:
			status = http.StatusUnprocessableEntity
		case apperrors.ErrRateLimited:
			status = http.StatusTooManyRequests
		case apperrors.ErrStateConflict:
			status = http.StatusConflict
		case apperrors.ErrUpstream:
			status = http.StatusBadGateway
		case apperrors.ErrNotFound:
			status = http.StatusNotFound
		}
	}

	c.JSON(status, Response{
		Success: false,
		Error: &Error{
			Code:    status,
			Message: message,
			Fields:  fields,
		},
	})
}
