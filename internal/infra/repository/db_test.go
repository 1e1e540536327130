package repository

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ialiagadev/physia-scheduler/internal/models"
)

// newTestDB opens a private in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a new database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	// fixtures reference users and services that are not seeded
	require.NoError(t, db.Exec("PRAGMA foreign_keys = OFF").Error)

	require.NoError(t, db.AutoMigrate(
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
	))
	return db
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func weekday(d int) *int { return &d }

func seed(t *testing.T, db *gorm.DB, rows ...any) {
	t.Helper()
	for _, row := range rows {
		require.NoError(t, db.Create(row).Error)
	}
}
