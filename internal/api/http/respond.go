package http

import (
	"errors"
	"net/http"

	"github.com/GoSim-25-26J-441/taskhub-backend/internal/domain"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const ctxHideForbidden = "hide_forbidden"

// HideForbidden makes Error answer 404 for forbidden resources on this route group.
func HideForbidden(hide bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxHideForbidden, hide)
		c.Next()
	}
}

// Error maps a service error onto the response envelope.
func Error(c *gin.Context, err error) {
	if ve, ok := domain.AsValidation(err); ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"ok": false, "error": "validation failed", "fields": ve.Fields})
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "not found"})
	case errors.Is(err, domain.ErrForbidden):
		if c.GetBool(ctxHideForbidden) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "not found"})
			return
		}
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "forbidden"})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "unauthorized"})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": err.Error()})
	default:
		logger.FromContext(c.Request.Context()).
			WithError(err).
			WithField("path", c.FullPath()).
			Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal server error"})
	}
}

// BindJSON decodes the body into dst and answers 400 itself on malformed input.
func BindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return false
	}
	return true
}

// ParamID reads a uuid path parameter; anything else cannot exist and answers 404.
func ParamID(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		Error(c, domain.ErrNotFound)
		return "", false
	}
	return id, true
}
