package appointment

import "github.com/ialiagadev/physia-scheduler/internal/httperr"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// BlocksTime reports whether an appointment or group activity in this status
// occupies the professional.
func BlocksTime(s string) bool {
	return Status(s) != StatusCancelled
}

// ===============================
// Validations
// ===============================

// CanCancel reports whether an appointment can be cancelled.
func CanCancel(current Status) error {
	if current != StatusScheduled {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

// CanComplete reports whether an appointment can be completed.
func CanComplete(current Status) error {
	if current != StatusScheduled {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

func InitialStatus() Status {
	return StatusScheduled
}
