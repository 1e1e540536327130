package audit

import (
	"encoding/json"

	"gorm.io/gorm"

	"github.com/ialiagadev/physia-scheduler/internal/models"
)

type Logger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Log(ev Event) error {
	var metaJSON string
	if ev.Metadata != nil {
		if b, err := json.Marshal(ev.Metadata); err == nil {
			metaJSON = string(b)
		}
	}

	row := models.AuditLog{
		OrganizationID: ev.OrganizationID,
		UserID:         ev.UserID,
		Action:         ev.Action,
		Entity:         ev.Entity,
		EntityID:       ev.EntityID,
		Metadata:       metaJSON,
		RequestID:      ev.RequestID,
	}

	return l.db.Create(&row).Error
}
