package handler

import (
	"errors"
	"io"
	"net/http"

	"nexum/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeError maps service error kinds to HTTP statuses. Unexpected errors
// are logged and answered with fallback so internals never reach clients.
func writeError(c *gin.Context, logger *zap.Logger, err error, fallback string) {
	var status int
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrPolicy):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	default:
		logger.Error(fallback,
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
		return
	}

	msg := err.Error()
	var serr *service.Error
	if errors.As(err, &serr) {
		msg = serr.Message()
	}
	c.JSON(status, gin.H{"error": msg})
}

// bindOptionalJSON decodes the body into obj. An empty body leaves obj untouched.
func bindOptionalJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return false
	}
	return true
}

func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return false
	}
	return true
}
