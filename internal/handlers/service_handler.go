package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ialiagadev/physia-scheduler/internal/httperr"
	"github.com/ialiagadev/physia-scheduler/internal/models"
)

type ServiceHandler struct {
	db *gorm.DB
}

func NewServiceHandler(db *gorm.DB) *ServiceHandler {
	return &ServiceHandler{db: db}
}

// --------- Requests ---------

type CreateServiceRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	DurationMin int     `json:"duration_min" binding:"required,min=1"`
	Price       float64 `json:"price" binding:"min=0"`
	Category    string  `json:"category"`
}

type UpdateServiceRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	DurationMin *int     `json:"duration_min,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Active      *bool    `json:"active,omitempty"`
}

type SetServiceProfessionalsRequest struct {
	ProfessionalIDs []uint `json:"professional_ids"`
}

// --------- Handlers ---------

func (h *ServiceHandler) List(c *gin.Context) {
	who := callerFrom(c)

	category := strings.ToLower(strings.TrimSpace(c.Query("category")))
	activeStr := strings.TrimSpace(c.Query("active"))
	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	q := h.db.Where("organization_id = ?", who.OrganizationID)

	if category != "" {
		q = q.Where("LOWER(category) = ?", category)
	}

	switch activeStr {
	case "true":
		q = q.Where("active = ?", true)
	case "false":
		q = q.Where("active = ?", false)
	}

	if query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var services []models.Service
	if err := q.
		Order("id ASC").
		Find(&services).Error; err != nil {

		httperr.Internal(c, "failed_to_list_services", "Could not list services.")
		return
	}

	c.JSON(http.StatusOK, services)
}

func (h *ServiceHandler) Create(c *gin.Context) {
	who := callerFrom(c)

	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	service := models.Service{
		OrganizationID: who.OrganizationID,
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		DurationMin:    req.DurationMin,
		Price:          req.Price,
		Active:         true,
		Category:       strings.ToLower(req.Category),
	}

	if err := h.db.Create(&service).Error; err != nil {
		httperr.Internal(c, "failed_to_create_service", "Could not create the service.")
		return
	}

	c.JSON(http.StatusCreated, service)
}

func (h *ServiceHandler) Update(c *gin.Context) {
	who := callerFrom(c)

	id, ok := paramUint(c, "id")
	if !ok {
		httperr.BadRequest(c, "invalid_id", "Invalid service id.")
		return
	}

	var req UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}
	if req.DurationMin != nil && *req.DurationMin <= 0 {
		httperr.BadRequest(c, "invalid_duration", "duration_min must be positive.")
		return
	}

	service, ok := h.find(c, who.OrganizationID, id)
	if !ok {
		return
	}

	if req.Name != nil {
		service.Name = *req.Name
	}
	if req.Description != nil {
		service.Description = *req.Description
	}
	if req.DurationMin != nil {
		service.DurationMin = *req.DurationMin
	}
	if req.Price != nil {
		service.Price = *req.Price
	}
	if req.Active != nil {
		service.Active = *req.Active
	}

	if err := h.db.Save(service).Error; err != nil {
		httperr.Internal(c, "failed_to_update_service", "Could not update the service.")
		return
	}

	c.JSON(http.StatusOK, service)
}

// SetProfessionals replaces the set of professionals qualified for a service.
func (h *ServiceHandler) SetProfessionals(c *gin.Context) {
	who := callerFrom(c)

	id, ok := paramUint(c, "id")
	if !ok {
		httperr.BadRequest(c, "invalid_id", "Invalid service id.")
		return
	}

	var req SetServiceProfessionalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	if _, ok := h.find(c, who.OrganizationID, id); !ok {
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if len(req.ProfessionalIDs) > 0 {
			var count int64
			if err := tx.Model(&models.User{}).
				Where("organization_id = ? AND id IN ?", who.OrganizationID, req.ProfessionalIDs).
				Count(&count).Error; err != nil {
				return err
			}
			if int(count) != len(unique(req.ProfessionalIDs)) {
				return httperr.ErrBusiness("professional_not_found")
			}
		}

		if err := tx.Where("service_id = ?", id).Delete(&models.ProfessionalService{}).Error; err != nil {
			return err
		}

		rows := make([]models.ProfessionalService, 0, len(req.ProfessionalIDs))
		for _, pid := range unique(req.ProfessionalIDs) {
			rows = append(rows, models.ProfessionalService{ProfessionalID: pid, ServiceID: id})
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		writeError(c, err, "failed_to_set_professionals")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"service_id":       id,
		"professional_ids": unique(req.ProfessionalIDs),
	})
}

func (h *ServiceHandler) find(c *gin.Context, organizationID, id uint) (*models.Service, bool) {
	var service models.Service
	if err := h.db.
		Where("id = ? AND organization_id = ?", id, organizationID).
		First(&service).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "service_not_found", "Service not found.")
			return nil, false
		}
		httperr.Internal(c, "failed_to_get_service", "Could not load the service.")
		return nil, false
	}
	return &service, true
}

func unique(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
