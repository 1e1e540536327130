package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ialiagadev/physia-scheduler/internal/httperr"
	"github.com/ialiagadev/physia-scheduler/internal/models"
)

func TestCancel(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	ap := &models.Appointment{Status: string(StatusScheduled)}

	require.NoError(t, Cancel(ap, now))
	assert.Equal(t, string(StatusCancelled), ap.Status)
	require.NotNil(t, ap.CancelledAt)
	assert.True(t, now.Equal(*ap.CancelledAt))

	err := Cancel(ap, now)
	assert.True(t, httperr.IsBusiness(err, "invalid_state"))
}

func TestComplete(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	ap := &models.Appointment{Status: string(StatusScheduled)}
	require.NoError(t, Complete(ap, now))
	assert.Equal(t, string(StatusCompleted), ap.Status)

	cancelled := &models.Appointment{Status: string(StatusCancelled)}
	assert.True(t, httperr.IsBusiness(Complete(cancelled, now), "invalid_state"))
}

func TestBlocksTime(t *testing.T) {
	assert.True(t, BlocksTime("scheduled"))
	assert.True(t, BlocksTime("completed"))
	assert.False(t, BlocksTime("cancelled"))
}

func TestStamp(t *testing.T) {
	cancelledAt := time.Now()
	template := models.Appointment{
		ID:             42,
		ProfessionalID: 3,
		StartTime:      "10:00",
		EndTime:        "10:45",
		Status:         string(StatusCancelled),
		CancelledAt:    &cancelledAt,
	}
	day := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)

	ap := Stamp(template, day)

	assert.Zero(t, ap.ID)
	assert.Equal(t, day, ap.Date)
	assert.Equal(t, "10:00", ap.StartTime)
	assert.Equal(t, uint(3), ap.ProfessionalID)
	assert.Equal(t, string(StatusScheduled), ap.Status)
	assert.Nil(t, ap.CancelledAt)
	assert.Equal(t, uint(42), template.ID, "template is left untouched")
}
