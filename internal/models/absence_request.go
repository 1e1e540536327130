package models

import "time"

const (
	AbsenceStatusPending  = "pending"
	AbsenceStatusApproved = "approved"
	AbsenceStatusRejected = "rejected"
)

const (
	AbsenceTypeVacation = "vacation"
	AbsenceTypeLeave    = "leave"
	AbsenceTypeDayOff   = "day_off"
)

type AbsenceRequest struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	OrganizationID uint `gorm:"index" json:"organization_id"`
	ProfessionalID uint `gorm:"index" json:"professional_id"`

	Type      string    `gorm:"size:20;not null" json:"type"`
	StartDate time.Time `gorm:"type:date;not null" json:"start_date"`
	EndDate   time.Time `gorm:"type:date;not null" json:"end_date"`
	Status    string    `gorm:"size:20;default:'pending'" json:"status"`
	Reason    string    `gorm:"size:255" json:"reason"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
