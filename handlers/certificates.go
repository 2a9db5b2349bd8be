package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/certdesk/certdesk/internal/certificate"
	"github.com/certdesk/certdesk/pkg/logger"
)

// Presigner hands out temporary download links for stored certificates.
type Presigner interface {
	PresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// CertificateHandler serves value editing, rendering and the generated
// certificate list of one account.
type CertificateHandler struct {
	svc     *certificate.Service
	presign Presigner
}

// NewCertificateHandler builds the handler. presign may be nil.
func NewCertificateHandler(svc *certificate.Service, presign Presigner) *CertificateHandler {
	return &CertificateHandler{svc: svc, presign: presign}
}

// Register routes under /api/accounts/:accountID
func (h *CertificateHandler) Register(acct *gin.RouterGroup) {
	acct.POST("/templates/:templateKey/values", h.SaveValues)
	acct.GET("/templates/:templateKey/values", h.GetValues)
	acct.GET("/templates/:templateKey/render", h.Render)
	acct.GET("/certificates", h.List)
}

// SaveValuesRequest accepts edited values and an optional base64 PDF the
// client filled in place.
type SaveValuesRequest struct {
	Values   map[string]string `json:"values"`
	Document []byte            `json:"document"`
}

func (h *CertificateHandler) SaveValues(c *gin.Context) {
	var req SaveValuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Values == nil && len(req.Document) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "values or document required"})
		return
	}
	res, err := h.svc.Save(c.Request.Context(), certificate.SaveRequest{
		AccountID:   c.Param("accountID"),
		TemplateKey: c.Param("templateKey"),
		Values:      req.Values,
		Document:    req.Document,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *CertificateHandler) GetValues(c *gin.Context) {
	out, err := h.svc.GetValues(c.Request.Context(), c.Param("accountID"), c.Param("templateKey"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Render streams the filled PDF. X-Fill-Failures carries the number of
// fields that could not be written.
func (h *CertificateHandler) Render(c *gin.Context) {
	out, err := h.svc.Render(c.Request.Context(), certificate.RenderRequest{
		AccountID:   c.Param("accountID"),
		TemplateKey: c.Param("templateKey"),
		HolderID:    c.Query("holder_id"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename))
	c.Header("X-Fill-Failures", strconv.Itoa(len(out.Failures)))
	c.Header("X-Template-Source", string(out.Source))
	c.Header("X-Certificate-Id", out.RecordID)
	c.Data(http.StatusOK, out.ContentType, out.Bytes)
}

type certificateView struct {
	*certificate.Record
	DownloadURL string `json:"download_url,omitempty"`
}

func (h *CertificateHandler) List(c *gin.Context) {
	recs, err := h.svc.Certificates(c.Request.Context(), c.Param("accountID"))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]certificateView, 0, len(recs))
	for _, r := range recs {
		v := certificateView{Record: r}
		if h.presign != nil && r.StorageKey != "" {
			u, err := h.presign.PresignedURL(c.Request.Context(), r.StorageKey, 15*time.Minute)
			if err != nil {
				logger.Warnf("presign %s: %v", r.StorageKey, err)
			} else {
				v.DownloadURL = u
			}
		}
		out = append(out, v)
	}
	c.JSON(http.StatusOK, out)
}
