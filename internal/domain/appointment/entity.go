package appointment

import (
	"time"

	"github.com/ialiagadev/physia-scheduler/internal/models"
)

// ===============================
// Domain Actions
// ===============================

func Cancel(ap *models.Appointment, now time.Time) error {
	if err := CanCancel(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCancelled)
	ap.CancelledAt = &now
	return nil
}

func Complete(ap *models.Appointment, now time.Time) error {
	if err := CanComplete(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCompleted)
	ap.CompletedAt = &now
	return nil
}

// Stamp copies a template onto date. The copy has no identity of its own yet
// and carries nothing tying it to other copies.
func Stamp(template models.Appointment, date time.Time) models.Appointment {
	ap := template
	ap.ID = 0
	ap.Date = date
	ap.CancelledAt = nil
	ap.CompletedAt = nil
	ap.Status = string(InitialStatus())
	return ap
}
