package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/acube-health/acube-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Status  string            `json:"status"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, code int, data interface{}) {
	c.JSON(code, Response{
		Status: "success",
		Data:   data,
	})
}

// RespondWithError sends an error response, mapping AppError codes to HTTP
// statuses and surfacing field-level validation messages when present.
func RespondWithError(c *gin.Context, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		c.JSON(appErr.StatusCode(), Response{
			Status:  "error",
			Message: appErr.Message,
			Fields:  appErr.Fields,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, Response{
		Status:  "error",
		Message: "internal server error",
	})
}
