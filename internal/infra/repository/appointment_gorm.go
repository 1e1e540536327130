package repository

import (
	"context"
	"slices"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/ialiagadev/physia-scheduler/internal/domain/appointment"
	"github.com/ialiagadev/physia-scheduler/internal/httperr"
	"github.com/ialiagadev/physia-scheduler/internal/models"
	"github.com/ialiagadev/physia-scheduler/internal/timezone"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

// --------------------------------------------------
// Organization
// --------------------------------------------------

func (r *AppointmentGormRepository) GetOrganizationByID(
	ctx context.Context,
	id uint,
) (*models.Organization, error) {

	var org models.Organization
	if err := r.db.WithContext(ctx).First(&org, id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// --------------------------------------------------
// Professional
// --------------------------------------------------

func (r *AppointmentGormRepository) GetProfessional(
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

// --------------------------------------------------
// Service
// --------------------------------------------------

func (r *AppointmentGormRepository) GetService(
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

// --------------------------------------------------
// Client
// --------------------------------------------------

func (r *AppointmentGormRepository) GetOrCreateClient(
	ctx context.Context,
	organizationID uint,
	name string,
	phone string,
	email string,
) (*models.Client, error) {

	var client models.Client
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND phone = ?", organizationID, phone).
		First(&client).Error

	if err == nil {
		return &client, nil
	}

	client = models.Client{
		OrganizationID: organizationID,
		Name:           name,
		Phone:          phone,
		Email:          email,
	}

	if err := r.db.WithContext(ctx).Create(&client).Error; err != nil {
		return nil, err
	}

	return &client, nil
}

// --------------------------------------------------
// Appointment (create)
// --------------------------------------------------

func (r *AppointmentGormRepository) CreateAppointments(
	ctx context.Context,
	aps []models.Appointment,
) error {

	if len(aps) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockProfessionals(tx, aps); err != nil {
			return err
		}

		for _, ap := range aps {
			day, next := dayRange(ap.Date)

			var conflicts []models.Appointment
			if err := tx.
				Select("id").
				Clauses(clause.Locking{Strength: "UPDATE"}).
				Where(
					"professional_id = ? AND date >= ? AND date < ? AND status <> ? AND start_time < ? AND end_time > ?",
					ap.ProfessionalID,
					day,
					next,
					string(domain.StatusCancelled),
					ap.EndTime,
					ap.StartTime,
				).
				Find(&conflicts).Error; err != nil {
				return err
			}

			if len(conflicts) > 0 {
				return httperr.ErrBusiness("time_conflict")
			}
		}

		return tx.Create(&aps).Error
	})
}

// bookingLockClass namespaces the two-key form of pg_advisory_xact_lock.
const bookingLockClass = 4210

// lockProfessionals serialises booking transactions per professional. Row
// locks alone cannot do it: FOR UPDATE over an empty window locks nothing.
// The lock is released at commit or rollback. Other dialects have no
// advisory locks and rely on their own write serialisation.
func lockProfessionals(tx *gorm.DB, aps []models.Appointment) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	for _, id := range professionalIDs(aps) {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?, ?)", bookingLockClass, int64(id)).Error; err != nil {
			return err
		}
	}
	return nil
}

// professionalIDs is sorted so concurrent transactions take locks in the
// same order.
func professionalIDs(aps []models.Appointment) []uint {
	seen := make(map[uint]struct{}, 1)
	ids := make([]uint, 0, 1)
	for _, ap := range aps {
		if _, ok := seen[ap.ProfessionalID]; ok {
			continue
		}
		seen[ap.ProfessionalID] = struct{}{}
		ids = append(ids, ap.ProfessionalID)
	}
	slices.Sort(ids)
	return ids
}

// --------------------------------------------------
// Appointment (cancel / complete)
// --------------------------------------------------

func (r *AppointmentGormRepository) GetAppointmentForProfessional(
	ctx context.Context,
	organizationID uint,
	appointmentID uint,
	professionalID uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Where(
			"id = ? AND organization_id = ? AND professional_id = ?",
			appointmentID, organizationID, professionalID,
		).
		First(&ap).Error; err != nil {
		return nil, err
	}

	return &ap, nil
}

func (r *AppointmentGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Save(ap).Error
}

// --------------------------------------------------
// Listing
// --------------------------------------------------

func (r *AppointmentGormRepository) ListAppointmentsForPeriod(
	ctx context.Context,
	organizationID uint,
	professionalID uint,
	from time.Time,
	to time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment

	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Service").
		Where(
			"organization_id = ? AND professional_id = ? AND date >= ? AND date < ?",
			organizationID,
			professionalID,
			from.Format(timezone.DateLayout),
			to.Format(timezone.DateLayout),
		).
		Order("date ASC, start_time ASC").
		Find(&apps).Error

	if err != nil {
		return nil, err
	}

	return apps, nil
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
