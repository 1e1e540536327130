package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ialiagadev/physia-scheduler/internal/httperr"
	"github.com/ialiagadev/physia-scheduler/internal/httpresp"
	"github.com/ialiagadev/physia-scheduler/internal/models"
	"github.com/ialiagadev/physia-scheduler/internal/timezone"
)

type OrganizationHandler struct {
	db *gorm.DB
}

func NewOrganizationHandler(db *gorm.DB) *OrganizationHandler {
	return &OrganizationHandler{db: db}
}

type UpdateOrganizationRequest struct {
	Name              *string `json:"name"`
	Phone             *string `json:"phone"`
	Address           *string `json:"address"`
	Timezone          *string `json:"timezone"`
	MinAdvanceMinutes *int    `json:"min_advance_minutes"`
}

func (h *OrganizationHandler) Get(c *gin.Context) {
	who := callerFrom(c)

	var org models.Organization
	if err := h.db.First(&org, who.OrganizationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "organization_not_found", "Organization not found.")
			return
		}
		httperr.Internal(c, "failed_to_get_organization", "Could not load the organization.")
		return
	}

	httpresp.OK(c, org)
}

// Update changes organization settings. Only admins reach it.
func (h *OrganizationHandler) Update(c *gin.Context) {
	who := callerFrom(c)

	var req UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	if req.MinAdvanceMinutes != nil && *req.MinAdvanceMinutes < 0 {
		httperr.BadRequest(c, "invalid_min_advance", "min_advance_minutes must be zero or positive.")
		return
	}
	if req.Timezone != nil && !timezone.IsValid(*req.Timezone) {
		httperr.BadRequest(c, "invalid_timezone", "Unknown IANA timezone.")
		return
	}

	var org models.Organization
	if err := h.db.First(&org, who.OrganizationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "organization_not_found", "Organization not found.")
			return
		}
		httperr.Internal(c, "failed_to_get_organization", "Could not load the organization.")
		return
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		org.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		org.Phone = *req.Phone
	}
	if req.Address != nil {
		org.Address = *req.Address
	}
	if req.Timezone != nil {
		org.Timezone = *req.Timezone
	}
	if req.MinAdvanceMinutes != nil {
		org.MinAdvanceMinutes = *req.MinAdvanceMinutes
	}

	if err := h.db.Save(&org).Error; err != nil {
		httperr.Internal(c, "failed_to_update_organization", "Could not save the organization.")
		return
	}

	httpresp.OK(c, org)
}
