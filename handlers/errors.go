package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/certdesk/certdesk/internal/agency"
	"github.com/certdesk/certdesk/internal/certificate"
	"github.com/certdesk/certdesk/internal/fieldvalues"
	"github.com/certdesk/certdesk/internal/holders"
	"github.com/certdesk/certdesk/internal/mapping"
	"github.com/certdesk/certdesk/internal/templates"
	"github.com/certdesk/certdesk/internal/validation"
	"github.com/certdesk/certdesk/pkg/logger"
)

// writeError maps service errors onto HTTP responses.
func writeError(c *gin.Context, err error) {
	var ve validation.ValidationErrors
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, ve)
	case errors.Is(err, templates.ErrTemplateNotFound),
		errors.Is(err, templates.ErrNotFound),
		errors.Is(err, templates.ErrNoLocalFile),
		errors.Is(err, holders.ErrNotFound),
		errors.Is(err, agency.ErrNotFound),
		errors.Is(err, mapping.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, fieldvalues.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, mapping.ErrInvalidScope),
		errors.Is(err, certificate.ErrInvalidDocument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
