package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/certdesk/certdesk/internal/holders"
)

type HolderHandler struct {
	svc *holders.Service
}

func NewHolderHandler(svc *holders.Service) *HolderHandler {
	return &HolderHandler{svc: svc}
}

// Register routes under /api/accounts/:accountID
func (h *HolderHandler) Register(acct *gin.RouterGroup) {
	g := acct.Group("/holders")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:holderID", h.Get)
	g.PUT("/:holderID", h.Update)
	g.DELETE("/:holderID", h.Delete)
}

func (h *HolderHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), c.Param("accountID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *HolderHandler) Create(c *gin.Context) {
	var in holders.Holder
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := h.svc.Create(c.Request.Context(), c.Param("accountID"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *HolderHandler) Get(c *gin.Context) {
	out, err := h.svc.Get(c.Request.Context(), c.Param("accountID"), c.Param("holderID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *HolderHandler) Update(c *gin.Context) {
	var in holders.Holder
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := h.svc.Update(c.Request.Context(), c.Param("accountID"), c.Param("holderID"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *HolderHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("accountID"), c.Param("holderID")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
