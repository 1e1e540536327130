package dto

type AppointmentListDTO struct {
	ID             uint   `json:"id"`
	ProfessionalID uint   `json:"professional_id"`
	Date           string `json:"date"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	Status         string `json:"status"`
	ClientName     string `json:"client_name"`
	ServiceName    string `json:"service_name"`
	Notes          string `json:"notes,omitempty"`
}
