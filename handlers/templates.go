package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/certdesk/certdesk/internal/templates"
)

type TemplateHandler struct {
	svc *templates.Service
}

func NewTemplateHandler(svc *templates.Service) *TemplateHandler {
	return &TemplateHandler{svc: svc}
}

// Register routes under /api
func (h *TemplateHandler) Register(api *gin.RouterGroup) {
	api.GET("/templates", h.List)
	api.POST("/templates/:templateKey/refresh", h.Refresh)
}

func (h *TemplateHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": list, "capabilities": h.svc.Capabilities()})
}

func (h *TemplateHandler) Refresh(c *gin.Context) {
	t, changed, err := h.svc.Refresh(c.Request.Context(), c.Param("templateKey"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": t, "changed": changed})
}
