package appointment

import (
	"context"
	"time"

	domain "github.com/ialiagadev/physia-scheduler/internal/domain/appointment"
	"github.com/ialiagadev/physia-scheduler/internal/dto"
	"github.com/ialiagadev/physia-scheduler/internal/httperr"
	"github.com/ialiagadev/physia-scheduler/internal/models"
	"github.com/ialiagadev/physia-scheduler/internal/timezone"
)

type ListAppointments struct {
	repo domain.Repository
}

func NewListAppointments(repo domain.Repository) *ListAppointments {
	return &ListAppointments{repo: repo}
}

// ByDate lists one professional's appointments on a "YYYY-MM-DD" date.
func (uc *ListAppointments) ByDate(
	ctx context.Context,
	organizationID uint,
	professionalID uint,
	date string,
) ([]dto.AppointmentListDTO, error) {

	org, err := uc.repo.GetOrganizationByID(ctx, organizationID)
	if err != nil {
		return nil, httperr.ErrBusiness("organization_not_found")
	}

	day, err := timezone.ParseDate(org.Timezone, date)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	return uc.period(ctx, organizationID, professionalID, day, day.AddDate(0, 0, 1))
}

// ByMonth lists one professional's appointments in a calendar month.
func (uc *ListAppointments) ByMonth(
	ctx context.Context,
	organizationID uint,
	professionalID uint,
	year int,
	month int,
) ([]dto.AppointmentListDTO, error) {

	if month < 1 || month > 12 || year < 1970 {
		return nil, httperr.ErrBusiness("invalid_month")
	}

	org, err := uc.repo.GetOrganizationByID(ctx, organizationID)
	if err != nil {
		return nil, httperr.ErrBusiness("organization_not_found")
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, timezone.Location(org.Timezone))
	return uc.period(ctx, organizationID, professionalID, start, start.AddDate(0, 1, 0))
}

func (uc *ListAppointments) period(
	ctx context.Context,
	organizationID uint,
	professionalID uint,
	from time.Time,
	to time.Time,
) ([]dto.AppointmentListDTO, error) {

	appointments, err := uc.repo.ListAppointmentsForPeriod(ctx, organizationID, professionalID, from, to)
	if err != nil {
		return nil, err
	}

	out := make([]dto.AppointmentListDTO, 0, len(appointments))
	for _, ap := range appointments {
		out = append(out, toListDTO(ap))
	}
	return out, nil
}

func toListDTO(ap models.Appointment) dto.AppointmentListDTO {
	return dto.AppointmentListDTO{
		ID:             ap.ID,
		ProfessionalID: ap.ProfessionalID,
		Date:           ap.Date.Format(timezone.DateLayout),
		StartTime:      ap.StartTime,
		EndTime:        ap.EndTime,
		Status:         ap.Status,
		ClientName:     ap.Client.Name,
		ServiceName:    ap.Service.Name,
		Notes:          ap.Notes,
	}
}
