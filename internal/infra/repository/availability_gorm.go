package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	domain "github.com/ialiagadev/physia-scheduler/internal/domain/availability"
	"github.com/ialiagadev/physia-scheduler/internal/models"
	"github.com/ialiagadev/physia-scheduler/internal/timezone"
)

type AvailabilityGormRepository struct {
	db *gorm.DB
}

func NewAvailabilityGormRepository(db *gorm.DB) *AvailabilityGormRepository {
	return &AvailabilityGormRepository{db: db}
}

// --------------------------------------------------
// Catalog
// --------------------------------------------------

func (r *AvailabilityGormRepository) GetService(
	ctx context.Context,
	organizationID uint,
	serviceID uint,
) (*models.Service, error) {

	var service models.Service
	if err := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", serviceID, organizationID).
		First(&service).Error; err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *AvailabilityGormRepository) GetProfessional(
	ctx context.Context,
	organizationID uint,
	professionalID uint,
) (*models.User, error) {

	var user models.User
	if err := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ? AND active = ?", professionalID, organizationID, true).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListQualifiedProfessionals returns active professionals able to perform the
// service, ordered by id so the "any professional" merge is deterministic.
func (r *AvailabilityGormRepository) ListQualifiedProfessionals(
	ctx context.Context,
	organizationID uint,
	serviceID uint,
) ([]models.User, error) {

	var users []models.User
	if err := r.db.WithContext(ctx).
		Joins("JOIN professional_services ps ON ps.professional_id = users.id").
		Where(
			"users.organization_id = ? AND users.active = ? AND ps.service_id = ?",
			organizationID, true, serviceID,
		).
		Order("users.id ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// --------------------------------------------------
// Schedules
// --------------------------------------------------

func (r *AvailabilityGormRepository) ListExceptionSchedules(
	ctx context.Context,
	organizationID uint,
	professionalID uint,
	date time.Time,
) ([]models.WorkSchedule, error) {

	day, next := dayRange(date)

	// Inactive rows are returned too: they mark the date as closed.
	var schedules []models.WorkSchedule
	if err := r.db.WithContext(ctx).
		Where(
			"organization_id = ? AND professional_id = ? AND kind = ? AND exception_date >= ? AND exception_date < ?",
			organizationID, professionalID, models.ScheduleKindException, day, next,
		).
		Order("id ASC").
		Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *AvailabilityGormRepository) ListRegularSchedules(
	ctx context.Context,
	organizationID uint,
	professionalID uint,
	dayOfWeek int,
) ([]models.WorkSchedule, error) {

	var schedules []models.WorkSchedule
	if err := r.db.WithContext(ctx).
		Where(
			"organization_id = ? AND professional_id = ? AND kind = ? AND day_of_week = ? AND active = ?",
			organizationID, professionalID, models.ScheduleKindRegular, dayOfWeek, true,
		).
		Order("start_time ASC, id ASC").
		Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *AvailabilityGormRepository) ListScheduleBreaks(
	ctx context.Context,
	scheduleID uint,
) ([]models.ScheduleBreak, error) {

	var breaks []models.ScheduleBreak
	if err := r.db.WithContext(ctx).
		Where("work_schedule_id = ? AND active = ?", scheduleID, true).
		Order("start_time ASC, sort_order ASC").
		Find(&breaks).Error; err != nil {
		return nil, err
	}
	return breaks, nil
}

// --------------------------------------------------
// Commitments
// --------------------------------------------------

func (r *AvailabilityGormRepository) ListApprovedAbsences(
	ctx context.Context,
	organizationID uint,
	professionalID uint,
	date time.Time,
) ([]models.AbsenceRequest, error) {

	day, next := dayRange(date)

	var absences []models.AbsenceRequest
	if err := r.db.WithContext(ctx).
		Where(
			"organization_id = ? AND professional_id = ? AND status = ? AND start_date < ? AND end_date >= ?",
			organizationID, professionalID, models.AbsenceStatusApproved, next, day,
		).
		Find(&absences).Error; err != nil {
		return nil, err
	}
	return absences, nil
}

func (r *AvailabilityGormRepository) ListActiveAppointments(
	ctx context.Context,
	organizationID uint,
	professionalID uint,
	date time.Time,
) ([]models.Appointment, error) {

	day, next := dayRange(date)

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Select("id", "professional_id", "date", "start_time", "end_time", "status").
		Where(
			"organization_id = ? AND professional_id = ? AND date >= ? AND date < ? AND status <> ?",
			organizationID, professionalID, day, next, "cancelled",
		).
		Order("start_time ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *AvailabilityGormRepository) ListActiveGroupActivities(
	ctx context.Context,
	organizationID uint,
	professionalID uint,
	date time.Time,
) ([]models.GroupActivity, error) {

	day, next := dayRange(date)

	var activities []models.GroupActivity
	if err := r.db.WithContext(ctx).
		Where(
			"organization_id = ? AND professional_id = ? AND date >= ? AND date < ? AND status <> ?",
			organizationID, professionalID, day, next, "cancelled",
		).
		Order("start_time ASC").
		Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

// Compile-time check
var _ domain.Repository = (*AvailabilityGormRepository)(nil)

// dayRange returns date and the following day as "YYYY-MM-DD". Date columns
// are matched with the half-open range [day, next).
func dayRange(date time.Time) (string, string) {
	return date.Format(timezone.DateLayout), date.AddDate(0, 0, 1).Format(timezone.DateLayout)
}

// OrganizationTimezone is used as the availability timezone lookup. Lookup
// failures fall back to the process default.
func (r *AvailabilityGormRepository) OrganizationTimezone(
	ctx context.Context,
	organizationID uint,
) string {

	var org models.Organization
	if err := r.db.WithContext(ctx).
		Select("timezone").
		First(&org, organizationID).Error; err != nil {
		return ""
	}
	return org.Timezone
}
