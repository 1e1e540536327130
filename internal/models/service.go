package models

import "time"

type Service struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	OrganizationID uint `gorm:"index" json:"organization_id"`

	Name        string  `gorm:"size:100;not null" json:"name"`
	Description string  `gorm:"size:255" json:"description"`
	DurationMin int     `json:"duration_min"`
	Price       float64 `json:"price"`
	Active      bool    `gorm:"not null" json:"active"`

	Category string `gorm:"size:50" json:"category"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfessionalService marks a professional as qualified to perform a service.
type ProfessionalService struct {
	ProfessionalID uint `gorm:"primaryKey" json:"professional_id"`
	ServiceID      uint `gorm:"primaryKey" json:"service_id"`

	CreatedAt time.Time `json:"created_at"`
}
