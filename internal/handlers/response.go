package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"quality-service/internal/services"
)

// RespondError maps a service error onto the HTTP error envelope. Upstream
// backing-store failures are a 500 carrying the store's own message;
// anything else outside the known taxonomy becomes a 500 with a generic
// message and the detail is logged server-side only.
func RespondError(c *gin.Context, logger *logrus.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": detailOf(err, "Forbidden")})
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": detailOf(err, "Validation failed")})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": detailOf(err, "Not found")})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": detailOf(err, "Conflict")})
	case errors.Is(err, services.ErrUpstream):
		logger.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		}).WithError(err).Error("Upstream error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": detailOf(err, "Internal server error")})
	default:
		logger.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		}).WithError(err).Error("Unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// detailOf strips the sentinel prefix, leaving the caller-facing message
func detailOf(err error, fallback string) string {
	msg := err.Error()
	if idx := strings.Index(msg, ": "); idx >= 0 {
		return msg[idx+2:]
	}
	return fallback
}
