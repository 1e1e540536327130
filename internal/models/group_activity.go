package models

import "time"

// GroupActivity occupies the professional for its whole time range,
// independently of how many participants signed up.
type GroupActivity struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	OrganizationID uint `gorm:"index" json:"organization_id"`
	ProfessionalID uint `gorm:"index" json:"professional_id"`

	Name      string    `gorm:"size:100;not null" json:"name"`
	Date      time.Time `gorm:"type:date;index" json:"date"`
	StartTime string    `gorm:"size:5" json:"start_time"`
	EndTime   string    `gorm:"size:5" json:"end_time"`
	Capacity  int       `json:"capacity"`
	Status    string    `gorm:"size:20;default:'scheduled'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
