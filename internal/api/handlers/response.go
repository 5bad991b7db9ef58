package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nebari-dev/modelconfig/internal/configstore"
)

// Response is the envelope every API endpoint answers with.
type Response struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    any               `json:"data"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func success(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func failure(c *gin.Context, status int, message string, errs map[string]string) {
	c.JSON(status, Response{Success: false, Message: message, Errors: errs})
}

// handleStoreError maps store errors to HTTP status codes.
func handleStoreError(c *gin.Context, err error) {
	if errors.Is(err, configstore.ErrNotFound) {
		failure(c, http.StatusNotFound, "Configuration not found.", nil)
		return
	}
	var validationErr *configstore.ValidationError
	if errors.As(err, &validationErr) {
		failure(c, http.StatusUnprocessableEntity, "Validation failed.", map[string]string{
			validationErr.Field: validationErr.Message,
		})
		return
	}
	slog.ErrorContext(c.Request.Context(), "unhandled configuration error", "error", err, "path", c.Request.URL.Path)
	failure(c, http.StatusInternalServerError, "Internal server error.", nil)
}
