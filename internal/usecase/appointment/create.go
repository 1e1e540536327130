package appointment

import (
	"context"
	"strings"
	"time"

	"github.com/ialiagadev/physia-scheduler/internal/audit"
	domain "github.com/ialiagadev/physia-scheduler/internal/domain/appointment"
	"github.com/ialiagadev/physia-scheduler/internal/domain/availability"
	"github.com/ialiagadev/physia-scheduler/internal/domain/recurrence"
	"github.com/ialiagadev/physia-scheduler/internal/httperr"
	"github.com/ialiagadev/physia-scheduler/internal/models"
	"github.com/ialiagadev/physia-scheduler/internal/timezone"
	"github.com/ialiagadev/physia-scheduler/internal/validators"
)

// ======================================================
// INPUT
// ======================================================

type Channel string

const (
	// ChannelPrivate is staff booking from the back office.
	ChannelPrivate Channel = "private"
	// ChannelPublic is a client booking through the organization's public page.
	ChannelPublic Channel = "public"
)

type RecurrenceInput struct {
	Type     string
	Interval int
	// EndDate is "YYYY-MM-DD" in the organization's timezone.
	EndDate string
}

type CreateAppointmentInput struct {
	OrganizationID uint
	ProfessionalID uint
	// ActorID is the staff member performing the booking, nil for public bookings.
	ActorID *uint
	Channel Channel

	ClientName  string
	ClientPhone string
	ClientEmail string

	ServiceID *uint

	Date      string
	StartTime string
	// EndTime may be empty when a service gives the duration.
	EndTime string
	Notes   string

	Recurrence *RecurrenceInput
}

// CreateAppointmentResult is also returned alongside the error when a series
// stops partway, holding the rows that were committed.
type CreateAppointmentResult struct {
	// Appointment is the single row, or the first row of a series.
	Appointment *models.Appointment
	Created     []models.Appointment
	Truncated   bool
	Recurrence  string
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	repo         domain.Repository
	writer       *Writer
	audit        *audit.Dispatcher
	maxInstances int
	now          func(tz string) time.Time
}

func NewCreateAppointment(
	repo domain.Repository,
	writer *Writer,
	audit *audit.Dispatcher,
	maxInstances int,
) *CreateAppointment {
	return &CreateAppointment{
		repo:         repo,
		writer:       writer,
		audit:        audit,
		maxInstances: maxInstances,
		now:          timezone.NowIn,
	}
}

func (uc *CreateAppointment) WithClock(now func(tz string) time.Time) *CreateAppointment {
	uc.now = now
	return uc
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (*CreateAppointmentResult, error) {

	// --------------------------------------------------
	// Organization + timezone
	// --------------------------------------------------
	org, err := uc.repo.GetOrganizationByID(ctx, in.OrganizationID)
	if err != nil {
		return nil, httperr.ErrBusiness("organization_not_found")
	}
	now := uc.now(org.Timezone)

	date, err := timezone.ParseDate(org.Timezone, in.Date)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	if _, err := uc.repo.GetProfessional(ctx, in.OrganizationID, in.ProfessionalID); err != nil {
		return nil, httperr.ErrBusiness("professional_not_found")
	}

	// --------------------------------------------------
	// Service + time range
	// --------------------------------------------------
	var service *models.Service
	if in.ServiceID != nil {
		service, err = uc.repo.GetService(ctx, in.OrganizationID, *in.ServiceID)
		if err != nil {
			return nil, httperr.ErrBusiness("service_not_found")
		}
	}

	startMin, endMin, err := timeRange(in.StartTime, in.EndTime, service)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Lead time (public channel only)
	// --------------------------------------------------
	if in.Channel == ChannelPublic {
		start := date.Add(time.Duration(startMin) * time.Minute)
		if start.Before(now.Add(time.Duration(org.MinAdvanceMinutes) * time.Minute)) {
			return nil, httperr.ErrBusiness("too_soon")
		}
	}

	// --------------------------------------------------
	// Recurrence validation happens before any write
	// --------------------------------------------------
	var rule *recurrence.Rule
	if in.Recurrence != nil {
		rule, err = parseRule(org.Timezone, in.Recurrence)
		if err != nil {
			return nil, err
		}
		if err := rule.Validate(now); err != nil {
			return nil, err
		}
	}

	// --------------------------------------------------
	// Client (get or create)
	// --------------------------------------------------
	var clientID *uint
	if strings.TrimSpace(in.ClientName) != "" || strings.TrimSpace(in.ClientPhone) != "" {
		client, err := uc.repo.GetOrCreateClient(
			ctx,
			in.OrganizationID,
			strings.TrimSpace(in.ClientName),
			validators.NormalizePhone(in.ClientPhone),
			strings.TrimSpace(in.ClientEmail),
		)
		if err != nil {
			return nil, err
		}
		clientID = &client.ID
	} else if in.Channel == ChannelPublic {
		return nil, httperr.ErrBusiness("client_required")
	}

	template := models.Appointment{
		OrganizationID: in.OrganizationID,
		ProfessionalID: in.ProfessionalID,
		ClientID:       clientID,
		ServiceID:      in.ServiceID,
		Date:           date,
		StartTime:      availability.MinutesToTime(startMin),
		EndTime:        availability.MinutesToTime(endMin),
		Status:         string(domain.InitialStatus()),
		Notes:          in.Notes,
	}

	// --------------------------------------------------
	// Write
	// --------------------------------------------------
	if rule == nil {
		ap, err := uc.writer.WriteOne(ctx, template)
		if err != nil {
			uc.conflict(ctx, in, err)
			return nil, err
		}

		uc.audit.Dispatch(audit.Event{
			OrganizationID: in.OrganizationID,
			UserID:         in.ActorID,
			Action:         "appointment_created",
			Entity:         "appointment",
			EntityID:       &ap.ID,
			Metadata:       map[string]any{"channel": in.Channel},
			RequestID:      audit.RequestIDFrom(ctx),
		})

		return &CreateAppointmentResult{
			Appointment: ap,
			Created:     []models.Appointment{*ap},
		}, nil
	}

	plan := recurrence.Expand(date, *rule, uc.maxInstances)

	created, err := uc.writer.WriteSeries(ctx, template, plan.Dates)
	if err != nil {
		uc.conflict(ctx, in, err)
		if len(created) > 0 {
			uc.audit.Dispatch(audit.Event{
				OrganizationID: in.OrganizationID,
				UserID:         in.ActorID,
				Action:         "appointment_series_partial",
				Entity:         "appointment",
				EntityID:       &created[0].ID,
				Metadata:       map[string]any{"committed": len(created), "requested": len(plan.Dates)},
				RequestID:      audit.RequestIDFrom(ctx),
			})
			return &CreateAppointmentResult{
				Appointment: &created[0],
				Created:     created,
				Truncated:   plan.Truncated,
			}, err
		}
		return nil, err
	}

	description := recurrence.Describe(*rule)

	uc.audit.Dispatch(audit.Event{
		OrganizationID: in.OrganizationID,
		UserID:         in.ActorID,
		Action:         "appointment_series_created",
		Entity:         "appointment",
		EntityID:       &created[0].ID,
		Metadata: map[string]any{
			"count":      len(created),
			"truncated":  plan.Truncated,
			"recurrence": description,
		},
		RequestID: audit.RequestIDFrom(ctx),
	})

	return &CreateAppointmentResult{
		Appointment: &created[0],
		Created:     created,
		Truncated:   plan.Truncated,
		Recurrence:  description,
	}, nil
}

func (uc *CreateAppointment) conflict(ctx context.Context, in CreateAppointmentInput, err error) {
	if !httperr.IsBusiness(err, "time_conflict") {
		return
	}
	uc.audit.Dispatch(audit.Event{
		OrganizationID: in.OrganizationID,
		UserID:         in.ActorID,
		Action:         "appointment_conflict",
		Entity:         "appointment",
		Metadata: map[string]any{
			"professional_id": in.ProfessionalID,
			"date":            in.Date,
			"start_time":      in.StartTime,
		},
		RequestID: audit.RequestIDFrom(ctx),
	})
}

// ------------------------------------------------------
// helpers
// ------------------------------------------------------

func parseClock(hm string) (int, bool) {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// timeRange resolves start/end minutes; an empty end is derived from the
// service duration.
func timeRange(start, end string, service *models.Service) (int, int, error) {
	startMin, ok := parseClock(start)
	if !ok {
		return 0, 0, httperr.ErrBusiness("invalid_time")
	}

	var endMin int
	switch {
	case end != "":
		endMin, ok = parseClock(end)
		if !ok {
			return 0, 0, httperr.ErrBusiness("invalid_time")
		}
		if end == "00:00" {
			endMin = 24 * 60
		}
	case service != nil && service.DurationMin > 0:
		endMin = startMin + service.DurationMin
	case service != nil:
		return 0, 0, httperr.ErrBusiness("invalid_duration")
	default:
		return 0, 0, httperr.ErrBusiness("end_time_required")
	}

	if endMin <= startMin || endMin > 24*60 {
		return 0, 0, httperr.ErrBusiness("invalid_time_range")
	}
	return startMin, endMin, nil
}

func parseRule(tz string, in *RecurrenceInput) (*recurrence.Rule, error) {
	rule := &recurrence.Rule{
		Unit:     recurrence.Unit(strings.ToLower(strings.TrimSpace(in.Type))),
		Interval: in.Interval,
	}
	if in.EndDate != "" {
		end, err := timezone.ParseDate(tz, in.EndDate)
		if err != nil {
			return nil, httperr.ErrBusiness("invalid_recurrence_end_date")
		}
		rule.EndDate = &end
	}
	return rule, nil
}
