package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ialiagadev/physia-scheduler/internal/httperr"
	"github.com/ialiagadev/physia-scheduler/internal/models"
	ucAppointment "github.com/ialiagadev/physia-scheduler/internal/usecase/appointment"
)

type organizationFinder interface {
	GetOrganizationBySlug(ctx context.Context, slug string) (*models.Organization, error)
}

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

// PublicHandler serves the unauthenticated booking surface of an
// organization, addressed by slug.
type PublicHandler struct {
	db           *gorm.DB
	orgs         organizationFinder
	availability *AvailabilityHandler
	create       appointmentCreator
}

func NewPublicHandler(
	db *gorm.DB,
	orgs organizationFinder,
	availability *AvailabilityHandler,
	create appointmentCreator,
) *PublicHandler {
	return &PublicHandler{
		db:           db,
		orgs:         orgs,
		availability: availability,
		create:       create,
	}
}

////////////////////////////////////////////////////////
// DTOs
////////////////////////////////////////////////////////

type PublicCreateAppointmentRequest struct {
	ProfessionalID uint   `json:"professional_id" binding:"required"`
	ClientName     string `json:"client_name" binding:"required"`
	ClientPhone    string `json:"client_phone" binding:"required"`
	ClientEmail    string `json:"client_email"`
	ServiceID      uint   `json:"service_id" binding:"required"`
	Date           string `json:"date" binding:"required"`
	StartTime      string `json:"start_time" binding:"required"`
	Notes          string `json:"notes"`
}

func (h *PublicHandler) organization(c *gin.Context) (*models.Organization, bool) {
	org, err := h.orgs.GetOrganizationBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		httperr.NotFound(c, "organization_not_found", "Organization not found.")
		return nil, false
	}
	return org, true
}

////////////////////////////////////////////////////////
// SERVICES
////////////////////////////////////////////////////////

func (h *PublicHandler) ListServices(c *gin.Context) {
	org, ok := h.organization(c)
	if !ok {
		return
	}

	category := strings.TrimSpace(strings.ToLower(c.Query("category")))
	query := strings.TrimSpace(strings.ToLower(c.Query("query")))

	q := h.db.
		Where("organization_id = ? AND active = ?", org.ID, true)

	if category != "" {
		q = q.Where("LOWER(category) = ?", category)
	}

	if query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var services []models.Service
	if err := q.Order("id ASC").Find(&services).Error; err != nil {
		httperr.Internal(c, "failed_to_list_services", "Could not list services.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"organization": organizationView(org),
		"services":     services,
	})
}

////////////////////////////////////////////////////////
// AVAILABILITY
////////////////////////////////////////////////////////

// Availability defaults to "any professional" when none is named.
func (h *PublicHandler) Availability(c *gin.Context) {
	org, ok := h.organization(c)
	if !ok {
		return
	}

	h.availability.respond(c, org.ID, 0)
}

////////////////////////////////////////////////////////
// CREATE APPOINTMENT
////////////////////////////////////////////////////////

// CreateAppointment books a single appointment. Recurring series are a staff
// feature and are not accepted here.
func (h *PublicHandler) CreateAppointment(c *gin.Context) {
	org, ok := h.organization(c)
	if !ok {
		return
	}

	var req PublicCreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	serviceID := req.ServiceID
	res, err := h.create.Execute(c.Request.Context(), ucAppointment.CreateAppointmentInput{
		OrganizationID: org.ID,
		ProfessionalID: req.ProfessionalID,
		Channel:        ucAppointment.ChannelPublic,
		ClientName:     req.ClientName,
		ClientPhone:    req.ClientPhone,
		ClientEmail:    req.ClientEmail,
		ServiceID:      &serviceID,
		Date:           req.Date,
		StartTime:      req.StartTime,
		Notes:          req.Notes,
	})
	if err != nil {
		writeCreateError(c, res, err)
		return
	}

	c.JSON(http.StatusCreated, newCreateAppointmentResponse(res))
}
