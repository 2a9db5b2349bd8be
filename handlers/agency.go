package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/certdesk/certdesk/internal/agency"
)

type AgencyHandler struct {
	svc *agency.Service
}

func NewAgencyHandler(svc *agency.Service) *AgencyHandler {
	return &AgencyHandler{svc: svc}
}

// Register routes under /api/accounts/:accountID
func (h *AgencyHandler) Register(acct *gin.RouterGroup) {
	acct.GET("/agency", h.Get)
	acct.PUT("/agency", h.Put)
}

func (h *AgencyHandler) Get(c *gin.Context) {
	out, err := h.svc.Get(c.Request.Context(), c.Param("accountID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *AgencyHandler) Put(c *gin.Context) {
	var in agency.Settings
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := h.svc.Put(c.Request.Context(), c.Param("accountID"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
