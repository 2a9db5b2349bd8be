package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/certdesk/certdesk/internal/agency"
	"github.com/certdesk/certdesk/internal/certificate"
	"github.com/certdesk/certdesk/internal/holders"
	"github.com/certdesk/certdesk/internal/mapping"
	"github.com/certdesk/certdesk/internal/templates"
	"github.com/certdesk/certdesk/pkg/middleware"
)

// Services bundles what the API routes call into.
type Services struct {
	Certificates *certificate.Service
	Templates    *templates.Service
	Mappings     *mapping.Service
	Holders      *holders.Service
	Agency       *agency.Service
	Presigner    Presigner
}

// RegisterAPIRoutes mounts every /api route on r. auth runs before all of
// them and limit before the account-scoped ones; either may be nil.
func RegisterAPIRoutes(r *gin.Engine, s Services, auth, limit gin.HandlerFunc) {
	api := r.Group("/api")
	if auth != nil {
		api.Use(auth)
	}
	NewTemplateHandler(s.Templates).Register(api)
	NewMappingHandler(s.Mappings).Register(api)

	acct := api.Group("/accounts/:accountID", middleware.AccountScope())
	if limit != nil {
		acct.Use(limit)
	}
	NewCertificateHandler(s.Certificates, s.Presigner).Register(acct)
	NewHolderHandler(s.Holders).Register(acct)
	NewAgencyHandler(s.Agency).Register(acct)
}
