package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Elmamis69/jatrack/internal/domain"
)

// respondError maps domain errors onto the HTTP error taxonomy. Store
// and infrastructure failures deliberately surface as an opaque server
// error; the wrapped cause is only logged.
func respondError(c *gin.Context, err error) {
	var validation *domain.ValidationError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "validation_error",
			"error_description": validation.Message,
			"field":             validation.Field,
		})
	case errors.Is(err, domain.ErrDuplicateEmail):
		c.JSON(http.StatusConflict, gin.H{
			"error":             "duplicate_resource",
			"error_description": "Email already registered.",
		})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":             "unauthenticated",
			"error_description": "Invalid credentials.",
		})
	case errors.Is(err, domain.ErrLockedOut):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":             "locked_out",
			"error_description": "Too many failed attempts. Try again later.",
		})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":             "not_found",
			"error_description": "Resource not found.",
		})
	case errors.Is(err, domain.ErrInvalidStatus), errors.Is(err, domain.ErrInvalidSortField):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_query_parameter",
			"error_description": err.Error(),
		})
	default:
		zap.L().Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             "server_error",
			"error_description": "Internal server error.",
		})
	}
}
