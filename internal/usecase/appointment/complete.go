package appointment

import (
	"context"

	"github.com/ialiagadev/physia-scheduler/internal/audit"
	domain "github.com/ialiagadev/physia-scheduler/internal/domain/appointment"
	"github.com/ialiagadev/physia-scheduler/internal/httperr"
	"github.com/ialiagadev/physia-scheduler/internal/models"
	"github.com/ialiagadev/physia-scheduler/internal/timezone"
)

type CompleteAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewCompleteAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *CompleteAppointment {
	return &CompleteAppointment{
		repo:  repo,
		audit: audit,
	}
}

// Execute marks one scheduled appointment as attended.
func (uc *CompleteAppointment) Execute(
	ctx context.Context,
	organizationID uint,
	professionalID uint,
	appointmentID uint,
) (*models.Appointment, error) {

	org, err := uc.repo.GetOrganizationByID(ctx, organizationID)
	if err != nil {
		return nil, httperr.ErrBusiness("organization_not_found")
	}

	ap, err := uc.repo.GetAppointmentForProfessional(ctx, organizationID, appointmentID, professionalID)
	if err != nil {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}

	if err := domain.Complete(ap, timezone.NowIn(org.Timezone)); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		OrganizationID: organizationID,
		UserID:         &professionalID,
		Action:         "appointment_completed",
		Entity:         "appointment",
		EntityID:       &ap.ID,
		RequestID:      audit.RequestIDFrom(ctx),
	})

	return ap, nil
}
