package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ialiagadev/physia-scheduler/internal/domain/availability"
	"github.com/ialiagadev/physia-scheduler/internal/httperr"
	ucAvailability "github.com/ialiagadev/physia-scheduler/internal/usecase/availability"
)

type singleAvailability interface {
	Execute(ctx context.Context, in ucAvailability.GetAvailabilityInput) ([]availability.TimeSlot, error)
}

type pooledAvailability interface {
	Execute(ctx context.Context, in ucAvailability.GetAnyAvailabilityInput) ([]availability.TimeSlot, error)
}

// ======================================================
// HANDLER
// ======================================================

type AvailabilityHandler struct {
	single singleAvailability
	pooled pooledAvailability
}

func NewAvailabilityHandler(
	single singleAvailability,
	pooled pooledAvailability,
) *AvailabilityHandler {
	return &AvailabilityHandler{
		single: single,
		pooled: pooled,
	}
}

// Get serves GET /api/me/availability. Without professional_id the caller's
// own agenda is used.
func (h *AvailabilityHandler) Get(c *gin.Context) {
	who := callerFrom(c)
	h.respond(c, who.OrganizationID, who.UserID)
}

// respond parses the shared query string and runs the matching use case.
// defaultProfessional 0 means "any".
func (h *AvailabilityHandler) respond(c *gin.Context, organizationID uint, defaultProfessional uint) {
	q, ok := parseAvailabilityQuery(c)
	if !ok {
		return
	}

	professionalID := defaultProfessional
	pooled := defaultProfessional == 0
	switch raw := strings.TrimSpace(c.Query("professional_id")); {
	case strings.EqualFold(raw, "any"):
		pooled = true
	case raw != "":
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			httperr.BadRequest(c, "invalid_professional_id", "professional_id must be a number or \"any\".")
			return
		}
		professionalID = uint(id)
		pooled = false
	}

	var (
		slots []availability.TimeSlot
		err   error
	)

	if pooled {
		slots, err = h.pooled.Execute(c.Request.Context(), ucAvailability.GetAnyAvailabilityInput{
			OrganizationID:  organizationID,
			ServiceID:       q.serviceID,
			ProfessionalIDs: q.professionalIDs,
			Date:            q.date,
			Duration:        q.duration,
			Options:         q.options,
		})
	} else {
		slots, err = h.single.Execute(c.Request.Context(), ucAvailability.GetAvailabilityInput{
			OrganizationID: organizationID,
			ProfessionalID: professionalID,
			ServiceID:      q.serviceID,
			Date:           q.date,
			Duration:       q.duration,
			Options:        q.options,
		})
	}

	if err != nil {
		writeError(c, err, "availability_failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":  q.date,
		"slots": slots,
	})
}

// ------------------------------------------------------
// query parsing
// ------------------------------------------------------

type availabilityQuery struct {
	serviceID       uint
	professionalIDs []uint
	date            string
	duration        int
	options         availability.Options
}

func parseAvailabilityQuery(c *gin.Context) (*availabilityQuery, bool) {
	q := &availabilityQuery{date: strings.TrimSpace(c.Query("date"))}

	if q.date == "" {
		httperr.BadRequest(c, "missing_date", "date is required.")
		return nil, false
	}

	serviceID, ok := queryUint(c, "service_id")
	if !ok {
		httperr.BadRequest(c, "invalid_service_id", "service_id must be a number.")
		return nil, false
	}
	q.serviceID = serviceID

	ints := map[string]*int{
		"duration":  &q.duration,
		"step":      &q.options.Step,
		"tolerance": &q.options.Tolerance,
	}
	for name, dst := range ints {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			httperr.BadRequest(c, "invalid_"+name, name+" must be a non-negative number.")
			return nil, false
		}
		*dst = v
	}

	if q.serviceID == 0 && q.duration == 0 {
		httperr.BadRequest(c, "missing_service_id", "service_id or duration is required.")
		return nil, false
	}

	if raw := c.Query("preferred_time"); raw != "" {
		t, err := time.Parse("15:04", raw)
		if err != nil {
			httperr.BadRequest(c, "invalid_preferred_time", "preferred_time must be HH:MM.")
			return nil, false
		}
		minutes := t.Hour()*60 + t.Minute()
		q.options.PreferredTime = &minutes
	}

	if raw := c.Query("professional_ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
			if err != nil || id == 0 {
				httperr.BadRequest(c, "invalid_professional_ids", "professional_ids must be a comma separated list of ids.")
				return nil, false
			}
			q.professionalIDs = append(q.professionalIDs, uint(id))
		}
	}

	return q, true
}
