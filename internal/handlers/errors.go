package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ialiagadev/physia-scheduler/internal/httperr"
)

var businessMessages = map[string]string{
	"invalid_date":                 "Invalid date, expected YYYY-MM-DD.",
	"invalid_time":                 "Invalid time, expected HH:MM.",
	"invalid_time_range":           "End time must be after start time.",
	"end_time_required":            "End time is required when no service is given.",
	"invalid_duration":             "Duration must be a positive number of minutes.",
	"invalid_step":                 "Step must not be negative.",
	"invalid_month":                "Invalid year or month.",
	"too_soon":                     "That time is too close to now.",
	"client_required":              "Client name or phone is required.",
	"invalid_recurrence_type":      "Recurrence type must be daily, weekly or monthly.",
	"invalid_recurrence_interval":  "Recurrence interval must be between 1 and 12.",
	"recurrence_end_date_required": "Recurrence end date is required.",
	"recurrence_end_date_past":     "Recurrence end date must be in the future.",
	"recurrence_end_date_too_far":  "Recurrence end date cannot be more than 24 months ahead.",
	"invalid_recurrence_end_date":  "Invalid recurrence end date, expected YYYY-MM-DD.",
	"no_dates_generated":           "The recurrence rule produced no dates.",
	"time_conflict":                "The professional already has an appointment at that time.",
	"booking_in_progress":          "Another booking for this professional is in progress, try again.",
	"invalid_state":                "The appointment cannot change to that state.",
	"organization_not_found":       "Organization not found.",
	"professional_not_found":       "Professional not found.",
	"service_not_found":            "Service not found.",
	"appointment_not_found":        "Appointment not found.",
}

// writeError renders use case errors. Business errors keep their code;
// anything else is reported as fallback with a 500.
func writeError(c *gin.Context, err error, fallback string) {
	status, body := errorBody(err, fallback)
	c.JSON(status, body)
}

func errorBody(err error, fallback string) (int, httperr.HTTPError) {
	code := httperr.BusinessCode(err)
	if code == "" {
		return http.StatusInternalServerError, httperr.HTTPError{Code: fallback, Message: "Unexpected error."}
	}

	message := businessMessages[code]
	if message == "" {
		message = code
	}

	switch {
	case strings.HasSuffix(code, "_not_found"):
		return http.StatusNotFound, httperr.HTTPError{Code: code, Message: message}
	case code == "time_conflict" || code == "booking_in_progress":
		return http.StatusConflict, httperr.HTTPError{Code: code, Message: message}
	default:
		return http.StatusUnprocessableEntity, httperr.HTTPError{Code: code, Message: message}
	}
}
