package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ialiagadev/physia-scheduler/internal/audit"
	"github.com/ialiagadev/physia-scheduler/internal/httperr"
	"github.com/ialiagadev/physia-scheduler/internal/httpresp"
	"github.com/ialiagadev/physia-scheduler/internal/models"
	"github.com/ialiagadev/physia-scheduler/internal/timezone"
)

type AbsenceHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewAbsenceHandler(db *gorm.DB, audit *audit.Dispatcher) *AbsenceHandler {
	return &AbsenceHandler{db: db, audit: audit}
}

type CreateAbsenceRequest struct {
	ProfessionalID uint   `json:"professional_id"`
	Type           string `json:"type" binding:"required,oneof=vacation leave day_off"`
	StartDate      string `json:"start_date" binding:"required"`
	EndDate        string `json:"end_date" binding:"required"`
	Reason         string `json:"reason"`
}

type UpdateAbsenceStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
}

func (h *AbsenceHandler) List(c *gin.Context) {
	who := callerFrom(c)

	q := h.db.Where("organization_id = ?", who.OrganizationID)

	if !who.IsAdmin() {
		q = q.Where("professional_id = ?", who.UserID)
	} else if requested, ok := queryUint(c, "professional_id"); ok && requested != 0 {
		q = q.Where("professional_id = ?", requested)
	}

	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var absences []models.AbsenceRequest
	if err := q.Order("start_date DESC").Find(&absences).Error; err != nil {
		httperr.Internal(c, "failed_to_list_absences", "Could not list absences.")
		return
	}

	httpresp.List(c, absences)
}

// Create files a request. It only affects availability once approved.
func (h *AbsenceHandler) Create(c *gin.Context) {
	who := callerFrom(c)

	var req CreateAbsenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	start, errS := time.Parse(timezone.DateLayout, req.StartDate)
	end, errE := time.Parse(timezone.DateLayout, req.EndDate)
	if errS != nil || errE != nil {
		httperr.BadRequest(c, "invalid_date", "Dates must be YYYY-MM-DD.")
		return
	}
	if end.Before(start) {
		httperr.BadRequest(c, "invalid_date_range", "end_date must not be before start_date.")
		return
	}

	absence := models.AbsenceRequest{
		OrganizationID: who.OrganizationID,
		ProfessionalID: targetProfessional(who, req.ProfessionalID),
		Type:           req.Type,
		StartDate:      start,
		EndDate:        end,
		Status:         models.AbsenceStatusPending,
		Reason:         req.Reason,
	}

	if err := h.db.Create(&absence).Error; err != nil {
		httperr.Internal(c, "failed_to_create_absence", "Could not create the absence request.")
		return
	}

	c.JSON(http.StatusCreated, absence)
}

// UpdateStatus approves or rejects a pending request. Admin only.
func (h *AbsenceHandler) UpdateStatus(c *gin.Context) {
	who := callerFrom(c)

	id, ok := paramUint(c, "id")
	if !ok {
		httperr.BadRequest(c, "invalid_id", "Invalid absence id.")
		return
	}

	var req UpdateAbsenceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	var absence models.AbsenceRequest
	if err := h.db.
		Where("id = ? AND organization_id = ?", id, who.OrganizationID).
		First(&absence).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "absence_not_found", "Absence request not found.")
			return
		}
		httperr.Internal(c, "failed_to_get_absence", "Could not load the absence request.")
		return
	}

	if absence.Status != models.AbsenceStatusPending {
		httperr.Write(c, http.StatusUnprocessableEntity, "invalid_state", "Only pending requests can be reviewed.")
		return
	}

	absence.Status = req.Status
	if err := h.db.Save(&absence).Error; err != nil {
		httperr.Internal(c, "failed_to_update_absence", "Could not update the absence request.")
		return
	}

	h.audit.Dispatch(audit.Event{
		OrganizationID: who.OrganizationID,
		UserID:         &who.UserID,
		Action:         "absence_" + req.Status,
		Entity:         "absence_request",
		EntityID:       &absence.ID,
		RequestID:      audit.RequestIDFrom(c.Request.Context()),
	})

	c.JSON(http.StatusOK, absence)
}
