package availability

import (
	"context"
	"errors"
	"time"

	domain "github.com/ialiagadev/physia-scheduler/internal/domain/availability"
	"github.com/ialiagadev/physia-scheduler/internal/httperr"
	"github.com/ialiagadev/physia-scheduler/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type GetAvailabilityInput struct {
	OrganizationID uint
	ProfessionalID uint
	ServiceID      uint

	// Date is "YYYY-MM-DD" in the organization's timezone.
	Date string
	// Duration overrides the service duration when > 0.
	Duration int

	Options domain.Options
}

// ======================================================
// USE CASE
// ======================================================

type GetAvailability struct {
	repo   domain.Repository
	engine *slotEngine
	now    func(tz string) time.Time
	tzOf   TimezoneLookup
}

func NewGetAvailability(repo domain.Repository, orgTimezone TimezoneLookup) *GetAvailability {
	return &GetAvailability{
		repo:   repo,
		engine: newSlotEngine(repo),
		now:    timezone.NowIn,
		tzOf:   orgTimezone,
	}
}

// WithClock replaces the wall clock, mainly for tests.
func (uc *GetAvailability) WithClock(now func(tz string) time.Time) *GetAvailability {
	uc.now = now
	return uc
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *GetAvailability) Execute(
	ctx context.Context,
	in GetAvailabilityInput,
) ([]domain.TimeSlot, error) {

	req, err := prepare(ctx, uc.repo, uc.tzOf, uc.now, in.OrganizationID, in.ServiceID, in.Date, in.Duration)
	if err != nil {
		return nil, err
	}

	if _, err := uc.repo.GetProfessional(ctx, in.OrganizationID, in.ProfessionalID); err != nil {
		return nil, httperr.ErrBusiness("professional_not_found")
	}

	slots, err := uc.engine.slotsFor(ctx, slotQuery{
		OrganizationID: in.OrganizationID,
		ProfessionalID: in.ProfessionalID,
		Date:           req.date,
		Now:            req.now,
		Duration:       req.duration,
		Options:        in.Options,
	})
	if err != nil {
		return nil, mapGenerateError(err)
	}

	return domain.ToTimeSlots(slots), nil
}

// ------------------------------------------------------
// shared request preparation
// ------------------------------------------------------

type prepared struct {
	date     time.Time
	now      time.Time
	duration int
}

func prepare(
	ctx context.Context,
	repo domain.Repository,
	tzOf TimezoneLookup,
	clock func(tz string) time.Time,
	organizationID uint,
	serviceID uint,
	rawDate string,
	override int,
) (*prepared, error) {

	tz := timezone.Default()
	if tzOf != nil {
		if orgTZ := tzOf(ctx, organizationID); orgTZ != "" {
			tz = orgTZ
		}
	}

	date, err := timezone.ParseDate(tz, rawDate)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	duration := override
	if duration <= 0 {
		service, err := repo.GetService(ctx, organizationID, serviceID)
		if err != nil {
			return nil, httperr.ErrBusiness("service_not_found")
		}
		duration = service.DurationMin
	}
	if duration <= 0 {
		return nil, httperr.ErrBusiness("invalid_duration")
	}

	return &prepared{
		date:     date,
		now:      clock(tz),
		duration: duration,
	}, nil
}

func mapGenerateError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidDuration):
		return httperr.ErrBusiness("invalid_duration")
	case errors.Is(err, domain.ErrInvalidStep):
		return httperr.ErrBusiness("invalid_step")
	}
	return err
}
