package availability

import (
	"context"
	"time"

	"github.com/ialiagadev/physia-scheduler/internal/models"
)

type Repository interface {
	// -------- Catalog --------
	GetService(
		ctx context.Context,
		organizationID uint,
		serviceID uint,
	) (*models.Service, error)

	GetProfessional(
		ctx context.Context,
		organizationID uint,
		professionalID uint,
	) (*models.User, error)

	ListQualifiedProfessionals(
		ctx context.Context,
		organizationID uint,
		serviceID uint,
	) ([]models.User, error)

	// -------- Schedules --------
	ListExceptionSchedules(
		ctx context.Context,
		organizationID uint,
		professionalID uint,
		date time.Time,
	) ([]models.WorkSchedule, error)

	ListRegularSchedules(
		ctx context.Context,
		organizationID uint,
		professionalID uint,
		dayOfWeek int,
	) ([]models.WorkSchedule, error)

	ListScheduleBreaks(
		ctx context.Context,
		scheduleID uint,
	) ([]models.ScheduleBreak, error)

	// -------- Commitments --------
	ListApprovedAbsences(
		ctx context.Context,
		organizationID uint,
		professionalID uint,
		date time.Time,
	) ([]models.AbsenceRequest, error)

	ListActiveAppointments(
		ctx context.Context,
		organizationID uint,
		professionalID uint,
		date time.Time,
	) ([]models.Appointment, error)

	ListActiveGroupActivities(
		ctx context.Context,
		organizationID uint,
		professionalID uint,
		date time.Time,
	) ([]models.GroupActivity, error)
}
