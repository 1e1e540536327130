package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domain "github.com/ialiagadev/physia-scheduler/internal/domain/availability"
	"github.com/ialiagadev/physia-scheduler/internal/httperr"
	"github.com/ialiagadev/physia-scheduler/internal/models"
)

// 2024-01-15 is a Monday.
const monday = "2024-01-15"

var (
	ctx            = context.Background()
	dayBefore      = time.Date(2024, 1, 14, 12, 0, 0, 0, time.UTC)
	mondayAt1012   = time.Date(2024, 1, 15, 10, 12, 0, 0, time.UTC)
	mondayMidnight = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
)

func startTimes(slots []domain.TimeSlot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.StartTime)
	}
	return out
}

func setup() *fakeRepo {
	repo := newFakeRepo()
	repo.services[1] = models.Service{ID: 1, Name: "Physiotherapy", DurationMin: 30, Active: true}
	repo.mondayWorkday(7, "Ana")
	return repo
}

func TestGetAvailability_Workday(t *testing.T) {
	repo := setup()
	uc := NewGetAvailability(repo, noTimezone).WithClock(fixedClock(dayBefore))

	slots, err := uc.Execute(ctx, GetAvailabilityInput{
		OrganizationID: 1, ProfessionalID: 7, ServiceID: 1, Date: monday,
	})

	require.NoError(t, err)
	require.Len(t, slots, 14)
	assert.Equal(t, "09:00", slots[0].StartTime)
	assert.Equal(t, "12:30", slots[7].StartTime)
	assert.Equal(t, "14:00", slots[8].StartTime)
	assert.Equal(t, "16:30", slots[13].StartTime)
	assert.Equal(t, "17:00", slots[13].EndTime)
	for _, s := range slots {
		assert.True(t, s.Available)
		assert.Nil(t, s.ProfessionalID)
	}
}

func TestGetAvailability_ApprovedAbsenceEmptiesDay(t *testing.T) {
	repo := setup()
	repo.absences = []models.AbsenceRequest{{
		ProfessionalID: 7,
		Type:           models.AbsenceTypeVacation,
		StartDate:      time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
		Status:         models.AbsenceStatusApproved,
	}}
	uc := NewGetAvailability(repo, noTimezone).WithClock(fixedClock(dayBefore))

	slots, err := uc.Execute(ctx, GetAvailabilityInput{
		OrganizationID: 1, ProfessionalID: 7, ServiceID: 1, Date: monday,
	})

	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGetAvailability_PendingAbsenceIgnored(t *testing.T) {
	repo := setup()
	repo.absences = []models.AbsenceRequest{{
		ProfessionalID: 7,
		StartDate:      mondayMidnight,
		EndDate:        mondayMidnight,
		Status:         models.AbsenceStatusPending,
	}}
	uc := NewGetAvailability(repo, noTimezone).WithClock(fixedClock(dayBefore))

	slots, err := uc.Execute(ctx, GetAvailabilityInput{
		OrganizationID: 1, ProfessionalID: 7, ServiceID: 1, Date: monday,
	})

	require.NoError(t, err)
	assert.Len(t, slots, 14)
}

func TestGetAvailability_NoScheduleForWeekday(t *testing.T) {
	repo := setup()
	uc := NewGetAvailability(repo, noTimezone).WithClock(fixedClock(dayBefore))

	slots, err := uc.Execute(ctx, GetAvailabilityInput{
		OrganizationID: 1, ProfessionalID: 7, ServiceID: 1, Date: "2024-01-16",
	})

	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGetAvailability_ExceptionOverridesRegular(t *testing.T) {
	repo := setup()
	repo.schedules = append(repo.schedules, models.WorkSchedule{
		ID:             99,
		ProfessionalID: 7,
		Kind:           models.ScheduleKindException,
		ExceptionDate:  &mondayMidnight,
		StartTime:      "10:00",
		EndTime:        "12:00",
		Active:         true,
	})
	repo.breaks[99] = []models.ScheduleBreak{
		{ID: 1, WorkScheduleID: 99, StartTime: "11:00", EndTime: "11:30", Active: true},
		{ID: 2, WorkScheduleID: 99, StartTime: "10:00", EndTime: "10:30", Active: false},
	}
	uc := NewGetAvailability(repo, noTimezone).WithClock(fixedClock(dayBefore))

	slots, err := uc.Execute(ctx, GetAvailabilityInput{
		OrganizationID: 1, ProfessionalID: 7, ServiceID: 1, Date: monday,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"10:00", "10:30", "11:30"}, startTimes(slots))
}

func TestGetAvailability_InactiveExceptionClosesDay(t *testing.T) {
	repo := setup()
	repo.schedules = append(repo.schedules, models.WorkSchedule{
		ID:             98,
		ProfessionalID: 7,
		Kind:           models.ScheduleKindException,
		ExceptionDate:  &mondayMidnight,
		StartTime:      "09:00",
		EndTime:        "17:00",
		Active:         false,
	})
	uc := NewGetAvailability(repo, noTimezone).WithClock(fixedClock(dayBefore))

	slots, err := uc.Execute(ctx, GetAvailabilityInput{
		OrganizationID: 1, ProfessionalID: 7, ServiceID: 1, Date: monday,
	})

	require.NoError(t, err)
	assert.Empty(t, slots, "the weekly schedule must not apply on a closed exception date")
}

func TestGetAvailability_InactiveWeeklyDayHasNoSlots(t *testing.T) {
	repo := setup()
	for i := range repo.schedules {
		repo.schedules[i].Active = false
	}
	uc := NewGetAvailability(repo, noTimezone).WithClock(fixedClock(dayBefore))

	slots, err := uc.Execute(ctx, GetAvailabilityInput{
		OrganizationID: 1, ProfessionalID: 7, ServiceID: 1, Date: monday,
	})

	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGetAvailability_CommitmentsAndCutoff(t *testing.T) {
	repo := setup()
	repo.appointments = []models.Appointment{
		{ProfessionalID: 7, Date: mondayMidnight, StartTime: "11:00", EndTime: "11:30", Status: "scheduled"},
		{ProfessionalID: 7, Date: mondayMidnight, StartTime: "12:00", EndTime: "12:30", Status: "cancelled"},
	}
	repo.groups = []models.GroupActivity{
		{ProfessionalID: 7, Date: mondayMidnight, StartTime: "15:00", EndTime: "16:00", Status: "scheduled"},
	}
	uc := NewGetAvailability(repo, noTimezone).WithClock(fixedClock(mondayAt1012))

	slots, err := uc.Execute(ctx, GetAvailabilityInput{
		OrganizationID: 1, ProfessionalID: 7, ServiceID: 1, Date: monday,
	})

	require.NoError(t, err)
	assert.Equal(t,
		[]string{"10:30", "11:30", "12:00", "12:30", "14:00", "14:30", "16:00", "16:30"},
		startTimes(slots),
	)
}

func TestGetAvailability_DurationOverrideAndErrors(t *testing.T) {
	repo := setup()
	repo.services[2] = models.Service{ID: 2, Name: "Broken", DurationMin: 0}
	uc := NewGetAvailability(repo, noTimezone).WithClock(fixedClock(dayBefore))

	slots, err := uc.Execute(ctx, GetAvailabilityInput{
		OrganizationID: 1, ProfessionalID: 7, ServiceID: 1, Date: monday, Duration: 60,
	})
	require.NoError(t, err)
	assert.Equal(t, "10:00", slots[1].StartTime)

	_, err = uc.Execute(ctx, GetAvailabilityInput{OrganizationID: 1, ProfessionalID: 7, ServiceID: 2, Date: monday})
	assert.True(t, httperr.IsBusiness(err, "invalid_duration"))

	_, err = uc.Execute(ctx, GetAvailabilityInput{OrganizationID: 1, ProfessionalID: 7, ServiceID: 404, Date: monday})
	assert.True(t, httperr.IsBusiness(err, "service_not_found"))

	_, err = uc.Execute(ctx, GetAvailabilityInput{OrganizationID: 1, ProfessionalID: 404, ServiceID: 1, Date: monday})
	assert.True(t, httperr.IsBusiness(err, "professional_not_found"))

	_, err = uc.Execute(ctx, GetAvailabilityInput{OrganizationID: 1, ProfessionalID: 7, ServiceID: 1, Date: "15/01/2024"})
	assert.True(t, httperr.IsBusiness(err, "invalid_date"))

	_, err = uc.Execute(ctx, GetAvailabilityInput{
		OrganizationID: 1, ProfessionalID: 7, ServiceID: 1, Date: monday,
		Options: domain.Options{Step: -5},
	})
	assert.True(t, httperr.IsBusiness(err, "invalid_step"))
}

func TestGetAvailability_StorageErrorPropagates(t *testing.T) {
	repo := setup()
	repo.failFor[7] = errStorage
	uc := NewGetAvailability(repo, noTimezone).WithClock(fixedClock(dayBefore))

	_, err := uc.Execute(ctx, GetAvailabilityInput{
		OrganizationID: 1, ProfessionalID: 7, ServiceID: 1, Date: monday,
	})

	assert.ErrorIs(t, err, errStorage)
}

// ------------------------------------------------------
// any professional
// ------------------------------------------------------

func TestGetAnyAvailability_MergesAndAttributes(t *testing.T) {
	repo := setup()
	repo.mondayWorkday(3, "Bruno")
	repo.qualified = []uint{3, 7}
	// Bruno is busy at 09:00, so Ana keeps that window.
	repo.appointments = []models.Appointment{
		{ProfessionalID: 3, Date: mondayMidnight, StartTime: "09:00", EndTime: "09:30", Status: "scheduled"},
	}
	uc := NewGetAnyAvailability(repo, noTimezone, zap.NewNop(), 2).WithClock(fixedClock(dayBefore))

	slots, err := uc.Execute(ctx, GetAnyAvailabilityInput{OrganizationID: 1, ServiceID: 1, Date: monday})

	require.NoError(t, err)
	require.Len(t, slots, 14)

	require.NotNil(t, slots[0].ProfessionalID)
	assert.Equal(t, uint(7), *slots[0].ProfessionalID)
	assert.Equal(t, "Ana", slots[0].ProfessionalName)

	require.NotNil(t, slots[1].ProfessionalID)
	assert.Equal(t, uint(3), *slots[1].ProfessionalID)
	assert.Equal(t, "Bruno", slots[1].ProfessionalName)
}

func TestGetAnyAvailability_FailingProfessionalIsSkipped(t *testing.T) {
	repo := setup()
	repo.mondayWorkday(3, "Bruno")
	repo.failFor[3] = errStorage
	uc := NewGetAnyAvailability(repo, noTimezone, nil, 0).WithClock(fixedClock(dayBefore))

	slots, err := uc.Execute(ctx, GetAnyAvailabilityInput{
		OrganizationID:  1,
		ServiceID:       1,
		ProfessionalIDs: []uint{3, 7, 404},
		Date:            monday,
	})

	require.NoError(t, err)
	require.Len(t, slots, 14)
	for _, s := range slots {
		assert.Equal(t, uint(7), *s.ProfessionalID)
	}
}

func TestGetAnyAvailability_NoCandidates(t *testing.T) {
	repo := setup()
	uc := NewGetAnyAvailability(repo, noTimezone, nil, 4).WithClock(fixedClock(dayBefore))

	slots, err := uc.Execute(ctx, GetAnyAvailabilityInput{OrganizationID: 1, ServiceID: 1, Date: monday})

	require.NoError(t, err)
	assert.Empty(t, slots)
	assert.NotNil(t, slots)
}

func TestGetAnyAvailability_ManyCandidatesBoundedFanout(t *testing.T) {
	repo := setup()
	repo.qualified = []uint{7}
	for id := uint(100); id < 130; id++ {
		repo.mondayWorkday(id, "P")
		repo.qualified = append(repo.qualified, id)
	}
	uc := NewGetAnyAvailability(repo, noTimezone, nil, 3).WithClock(fixedClock(dayBefore))

	slots, err := uc.Execute(ctx, GetAnyAvailabilityInput{OrganizationID: 1, ServiceID: 1, Date: monday})

	require.NoError(t, err)
	require.Len(t, slots, 14)
	for _, s := range slots {
		assert.Equal(t, uint(7), *s.ProfessionalID, "first candidate keeps every window")
	}
}
