package db

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ialiagadev/physia-scheduler/internal/config"
	"github.com/ialiagadev/physia-scheduler/internal/models"
)

func NewDB(cfg *config.Config, log *zap.Logger) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		log.Fatal("failed to connect database", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("failed to get sql.DB", zap.Error(err))
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(
		&models.Organization{},
		&models.User{},
		&models.Service{},
		&models.ProfessionalService{},
		&models.Client{},
		&models.WorkSchedule{},
		&models.ScheduleBreak{},
		&models.AbsenceRequest{},
		&models.GroupActivity{},
		&models.Appointment{},
		&models.AuditLog{},
	); err != nil {
		log.Fatal("failed to migrate", zap.Error(err))
	}

	res := db.Exec(`
        UPDATE organizations
        SET timezone = ?
        WHERE timezone IS NULL OR timezone = ''
    `, cfg.DefaultTimezone)
	if res.Error != nil {
		log.Warn("timezone backfill failed", zap.Error(res.Error))
	} else if res.RowsAffected > 0 {
		log.Info("timezone backfilled",
			zap.Int64("organizations", res.RowsAffected),
			zap.String("timezone", cfg.DefaultTimezone),
		)
	}

	return db
}
