package models

import "time"

const (
	ScheduleKindRegular   = "regular"
	ScheduleKindException = "exception"
)

// WorkSchedule is either a weekly regular block (DayOfWeek, 0 = Sunday)
// or a one-off exception for ExceptionDate. Times are "HH:MM".
// An inactive regular row is ignored; an inactive exception closes the day.
type WorkSchedule struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	OrganizationID uint `gorm:"index" json:"organization_id"`
	ProfessionalID uint `gorm:"index" json:"professional_id"`

	Kind          string     `gorm:"size:20;default:'regular'" json:"kind"`
	DayOfWeek     *int       `json:"day_of_week,omitempty"`
	ExceptionDate *time.Time `gorm:"type:date" json:"exception_date,omitempty"`

	StartTime  string `gorm:"size:5" json:"start_time"`
	EndTime    string `gorm:"size:5" json:"end_time"`
	BreakStart string `gorm:"size:5" json:"break_start"`
	BreakEnd   string `gorm:"size:5" json:"break_end"`
	Active     bool   `gorm:"not null" json:"active"`

	Breaks []ScheduleBreak `gorm:"foreignKey:WorkScheduleID;constraint:OnDelete:CASCADE;" json:"breaks,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ScheduleBreak struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	WorkScheduleID uint `gorm:"index" json:"work_schedule_id"`

	Name      string `gorm:"size:100" json:"name"`
	StartTime string `gorm:"size:5" json:"start_time"`
	EndTime   string `gorm:"size:5" json:"end_time"`
	Active    bool   `gorm:"not null" json:"active"`
	SortOrder int    `gorm:"default:0" json:"sort_order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
