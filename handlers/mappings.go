package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/certdesk/certdesk/internal/mapping"
)

type MappingHandler struct {
	svc *mapping.Service
}

func NewMappingHandler(svc *mapping.Service) *MappingHandler {
	return &MappingHandler{svc: svc}
}

// Register routes under /api
func (h *MappingHandler) Register(api *gin.RouterGroup) {
	api.GET("/mappings/:templateKey/:scope", h.Get)
	api.PUT("/mappings/:templateKey/:scope", h.Put)
}

// Get returns the effective role map; ?defaults_only=true returns the built-in table.
func (h *MappingHandler) Get(c *gin.Context) {
	defaultsOnly, _ := strconv.ParseBool(c.Query("defaults_only"))
	key, scope := c.Param("templateKey"), c.Param("scope")
	roles, err := h.svc.Get(c.Request.Context(), key, scope, defaultsOnly)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"template_key":  mapping.NormalizeKey(key),
		"scope":         scope,
		"roles":         roles,
		"defaults_only": defaultsOnly,
	})
}

type putMappingRequest struct {
	Roles map[string]*string `json:"roles" binding:"required"`
}

func (h *MappingHandler) Put(c *gin.Context) {
	var req putMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mp, err := h.svc.Put(c.Request.Context(), c.Param("templateKey"), c.Param("scope"), req.Roles)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, mp)
}
