package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ialiagadev/physia-scheduler/internal/dto"
	"github.com/ialiagadev/physia-scheduler/internal/httperr"
	"github.com/ialiagadev/physia-scheduler/internal/models"
	ucAppointment "github.com/ialiagadev/physia-scheduler/internal/usecase/appointment"
)

type appointmentCreator interface {
	Execute(ctx context.Context, in ucAppointment.CreateAppointmentInput) (*ucAppointment.CreateAppointmentResult, error)
}

type appointmentTransition interface {
	Execute(ctx context.Context, organizationID, professionalID, appointmentID uint) (*models.Appointment, error)
}

type appointmentLister interface {
	ByDate(ctx context.Context, organizationID, professionalID uint, date string) ([]dto.AppointmentListDTO, error)
	ByMonth(ctx context.Context, organizationID, professionalID uint, year, month int) ([]dto.AppointmentListDTO, error)
}

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	create   appointmentCreator
	complete appointmentTransition
	cancel   appointmentTransition
	list     appointmentLister
}

func NewAppointmentHandler(
	create appointmentCreator,
	complete appointmentTransition,
	cancel appointmentTransition,
	list appointmentLister,
) *AppointmentHandler {
	return &AppointmentHandler{
		create:   create,
		complete: complete,
		cancel:   cancel,
		list:     list,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	ProfessionalID uint `json:"professional_id"`

	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone"`
	ClientEmail string `json:"client_email"`

	ServiceID *uint  `json:"service_id"`
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time"`
	Notes     string `json:"notes"`

	IsRecurring        bool   `json:"is_recurring"`
	RecurrenceType     string `json:"recurrence_type"`
	RecurrenceInterval int    `json:"recurrence_interval"`
	RecurrenceEndDate  string `json:"recurrence_end_date"`
}

func (r CreateAppointmentRequest) recurrence() *ucAppointment.RecurrenceInput {
	if !r.IsRecurring {
		return nil
	}
	return &ucAppointment.RecurrenceInput{
		Type:     r.RecurrenceType,
		Interval: r.RecurrenceInterval,
		EndDate:  r.RecurrenceEndDate,
	}
}

type CreateAppointmentResponse struct {
	Appointment  *models.Appointment `json:"appointment"`
	CreatedCount int                 `json:"created_count"`
	Truncated    bool                `json:"truncated,omitempty"`
	Recurrence   string              `json:"recurrence,omitempty"`
}

// PartialSeriesResponse is the error body of a series that stopped partway.
// The rows in Created stay booked.
type PartialSeriesResponse struct {
	httperr.HTTPError
	CreatedCount int                  `json:"created_count"`
	Created      []models.Appointment `json:"created"`
}

// writeCreateError renders a create failure, reporting committed rows when
// a series stopped partway.
func writeCreateError(c *gin.Context, res *ucAppointment.CreateAppointmentResult, err error) {
	if res == nil || len(res.Created) == 0 {
		writeError(c, err, "failed_to_create_appointment")
		return
	}

	status, body := errorBody(err, "failed_to_create_appointment")
	c.JSON(status, PartialSeriesResponse{
		HTTPError:    body,
		CreatedCount: len(res.Created),
		Created:      res.Created,
	})
}

func newCreateAppointmentResponse(res *ucAppointment.CreateAppointmentResult) CreateAppointmentResponse {
	return CreateAppointmentResponse{
		Appointment:  res.Appointment,
		CreatedCount: len(res.Created),
		Truncated:    res.Truncated,
		Recurrence:   res.Recurrence,
	}
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	who := callerFrom(c)

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	actor := who.UserID
	res, err := h.create.Execute(c.Request.Context(), ucAppointment.CreateAppointmentInput{
		OrganizationID: who.OrganizationID,
		ProfessionalID: targetProfessional(who, req.ProfessionalID),
		ActorID:        &actor,
		Channel:        ucAppointment.ChannelPrivate,
		ClientName:     req.ClientName,
		ClientPhone:    req.ClientPhone,
		ClientEmail:    req.ClientEmail,
		ServiceID:      req.ServiceID,
		Date:           req.Date,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Notes:          req.Notes,
		Recurrence:     req.recurrence(),
	})
	if err != nil {
		writeCreateError(c, res, err)
		return
	}

	c.JSON(http.StatusCreated, newCreateAppointmentResponse(res))
}

// ======================================================
// LIST
// ======================================================

func (h *AppointmentHandler) ListByDate(c *gin.Context) {
	who := callerFrom(c)

	date := c.Query("date")
	if date == "" {
		httperr.BadRequest(c, "missing_date", "date is required.")
		return
	}

	requested, ok := queryUint(c, "professional_id")
	if !ok {
		httperr.BadRequest(c, "invalid_professional_id", "professional_id must be a number.")
		return
	}

	out, err := h.list.ByDate(c.Request.Context(), who.OrganizationID, targetProfessional(who, requested), date)
	if err != nil {
		writeError(c, err, "failed_to_list_appointments")
		return
	}

	c.JSON(http.StatusOK, out)
}

func (h *AppointmentHandler) ListByMonth(c *gin.Context) {
	who := callerFrom(c)

	year, errY := strconv.Atoi(c.Query("year"))
	month, errM := strconv.Atoi(c.Query("month"))
	if errY != nil || errM != nil {
		httperr.BadRequest(c, "missing_year_or_month", "year and month are required.")
		return
	}

	requested, ok := queryUint(c, "professional_id")
	if !ok {
		httperr.BadRequest(c, "invalid_professional_id", "professional_id must be a number.")
		return
	}

	out, err := h.list.ByMonth(c.Request.Context(), who.OrganizationID, targetProfessional(who, requested), year, month)
	if err != nil {
		writeError(c, err, "failed_to_list_appointments")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"year":         year,
		"month":        month,
		"appointments": out,
	})
}

// ======================================================
// STATE CHANGES
// ======================================================

func (h *AppointmentHandler) Complete(c *gin.Context) {
	h.transition(c, h.complete, "failed_to_complete_appointment")
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	h.transition(c, h.cancel, "failed_to_cancel_appointment")
}

func (h *AppointmentHandler) transition(c *gin.Context, uc appointmentTransition, fallback string) {
	who := callerFrom(c)

	id, ok := paramUint(c, "id")
	if !ok {
		httperr.BadRequest(c, "invalid_id", "Invalid appointment id.")
		return
	}

	requested, ok := queryUint(c, "professional_id")
	if !ok {
		httperr.BadRequest(c, "invalid_professional_id", "professional_id must be a number.")
		return
	}

	ap, err := uc.Execute(c.Request.Context(), who.OrganizationID, targetProfessional(who, requested), id)
	if err != nil {
		writeError(c, err, fallback)
		return
	}

	c.JSON(http.StatusOK, ap)
}
