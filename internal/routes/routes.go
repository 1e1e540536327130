package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ialiagadev/physia-scheduler/internal/audit"
	"github.com/ialiagadev/physia-scheduler/internal/config"
	domainAppointment "github.com/ialiagadev/physia-scheduler/internal/domain/appointment"
	"github.com/ialiagadev/physia-scheduler/internal/handlers"
	"github.com/ialiagadev/physia-scheduler/internal/infra/lock"
	infraRepo "github.com/ialiagadev/physia-scheduler/internal/infra/repository"
	"github.com/ialiagadev/physia-scheduler/internal/middleware"
	"github.com/ialiagadev/physia-scheduler/internal/models"
	ucAppointment "github.com/ialiagadev/physia-scheduler/internal/usecase/appointment"
	ucAvailability "github.com/ialiagadev/physia-scheduler/internal/usecase/availability"
)

// RegisterRoutes wires the API onto r. The returned func flushes background
// workers and must be called on shutdown.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, log *zap.Logger) func() {

	// ======================================================
	// MIDDLEWARE
	// ======================================================
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigins...))
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(log))

	// ======================================================
	// INFRA
	// ======================================================
	appointmentRepo := infraRepo.NewAppointmentGormRepository(db)
	availabilityRepo := infraRepo.NewAvailabilityGormRepository(db)
	organizationRepo := infraRepo.NewOrganizationGormRepository(db)

	auditDispatcher := audit.NewDispatcher(audit.New(db), log.Named("audit"))

	var locker domainAppointment.Locker
	if cfg.RedisURL != "" {
		client, err := lock.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Warn("redis disabled, booking lock falls back to database checks", zap.Error(err))
		} else {
			locker = lock.NewRedisLocker(client, log.Named("lock"))
		}
	}

	writer := ucAppointment.NewWriter(
		appointmentRepo,
		locker,
		log.Named("writer"),
		ucAppointment.WriterConfig{
			BatchSize:  cfg.RecurrenceBatchSize,
			BatchPause: cfg.RecurrenceBatchPause,
			LockTTL:    cfg.BookingLockTTL,
		},
	)

	// ======================================================
	// USE CASES
	// ======================================================
	createAppointmentUC := ucAppointment.NewCreateAppointment(
		appointmentRepo,
		writer,
		auditDispatcher,
		cfg.RecurrenceMaxInstances,
	)

	completeAppointmentUC := ucAppointment.NewCompleteAppointment(
		appointmentRepo,
		auditDispatcher,
	)

	cancelAppointmentUC := ucAppointment.NewCancelAppointment(
		appointmentRepo,
		auditDispatcher,
	)

	listAppointmentsUC := ucAppointment.NewListAppointments(appointmentRepo)

	getAvailabilityUC := ucAvailability.NewGetAvailability(
		availabilityRepo,
		availabilityRepo.OrganizationTimezone,
	)

	getAnyAvailabilityUC := ucAvailability.NewGetAnyAvailability(
		availabilityRepo,
		availabilityRepo.OrganizationTimezone,
		log.Named("availability"),
		cfg.AvailabilityFanout,
	)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db)
	organizationHandler := handlers.NewOrganizationHandler(db)

	serviceHandler := handlers.NewServiceHandler(db)
	clientHandler := handlers.NewClientHandler(db)
	scheduleHandler := handlers.NewScheduleHandler(db)
	absenceHandler := handlers.NewAbsenceHandler(db, auditDispatcher)

	availabilityHandler := handlers.NewAvailabilityHandler(
		getAvailabilityUC,
		getAnyAvailabilityUC,
	)

	appointmentHandler := handlers.NewAppointmentHandler(
		createAppointmentUC,
		completeAppointmentUC,
		cancelAppointmentUC,
		listAppointmentsUC,
	)

	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	publicHandler := handlers.NewPublicHandler(
		db,
		organizationRepo,
		availabilityHandler,
		createAppointmentUC,
	)

	adminOnly := middleware.RequireRole(models.RoleAdmin)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/:slug/services", publicHandler.ListServices)
			publicAPI.GET("/:slug/availability", publicHandler.Availability)
			publicAPI.POST("/:slug/appointments", publicHandler.CreateAppointment)
		}

		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// SECURED
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", meHandler.GetMe)

			secured.GET("/me/organization", organizationHandler.Get)
			secured.PATCH("/me/organization", adminOnly, organizationHandler.Update)

			secured.GET("/me/professionals", authHandler.ListProfessionals)
			secured.POST("/me/professionals", adminOnly, authHandler.CreateProfessional)

			secured.GET("/me/clients", clientHandler.List)

			secured.GET("/me/services", serviceHandler.List)
			secured.POST("/me/services", adminOnly, serviceHandler.Create)
			secured.PATCH("/me/services/:id", adminOnly, serviceHandler.Update)
			secured.PUT("/me/services/:id/professionals", adminOnly, serviceHandler.SetProfessionals)

			secured.GET("/me/schedules", scheduleHandler.Get)
			secured.PUT("/me/schedules", scheduleHandler.ReplaceWeekly)
			secured.POST("/me/schedules/exceptions", scheduleHandler.CreateException)
			secured.DELETE("/me/schedules/:id", scheduleHandler.Delete)
			secured.POST("/me/schedules/:id/breaks", scheduleHandler.AddBreak)

			secured.GET("/me/absences", absenceHandler.List)
			secured.POST("/me/absences", absenceHandler.Create)
			secured.PATCH("/me/absences/:id/status", adminOnly, absenceHandler.UpdateStatus)

			secured.GET("/me/availability", availabilityHandler.Get)

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			secured.POST("/me/appointments", appointmentHandler.Create)
			secured.GET("/me/appointments", appointmentHandler.ListByDate)
			secured.GET("/me/appointments/month", appointmentHandler.ListByMonth)
			secured.PATCH("/me/appointments/:id/cancel", appointmentHandler.Cancel)
			secured.PATCH("/me/appointments/:id/complete", appointmentHandler.Complete)

			secured.GET("/me/audit-logs", adminOnly, auditLogsHandler.List)
		}
	}

	return auditDispatcher.Close
}
