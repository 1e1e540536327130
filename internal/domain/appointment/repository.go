package appointment

import (
	"context"
	"time"

	"github.com/ialiagadev/physia-scheduler/internal/models"
)

type Repository interface {
	// -------- Organization --------
	GetOrganizationByID(
		ctx context.Context,
		id uint,
	) (*models.Organization, error)

	// -------- Professional --------
	GetProfessional(
		ctx context.Context,
		organizationID uint,
		professionalID uint,
	) (*models.User, error)

	// -------- Service --------
	GetService(
		ctx context.Context,
		organizationID uint,
		serviceID uint,
	) (*models.Service, error)

	// -------- Client --------
	GetOrCreateClient(
		ctx context.Context,
		organizationID uint,
		name string,
		phone string,
		email string,
	) (*models.Client, error)

	// -------- Appointment (create) --------

	// CreateAppointments inserts all rows in one transaction, failing with
	// time_conflict if any row overlaps a non-cancelled appointment.
	CreateAppointments(
		ctx context.Context,
		aps []models.Appointment,
	) error

	// -------- Appointment (state change) --------
	GetAppointmentForProfessional(
		ctx context.Context,
		organizationID uint,
		appointmentID uint,
		professionalID uint,
	) (*models.Appointment, error)

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// -------- Listing --------
	ListAppointmentsForPeriod(
		ctx context.Context,
		organizationID uint,
		professionalID uint,
		from time.Time,
		to time.Time,
	) ([]models.Appointment, error)
}

// Locker serialises writes per key across instances.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, acquired bool, err error)
	Unlock(ctx context.Context, key string, token string) error
}
