package availability

import (
	"context"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/ialiagadev/physia-scheduler/internal/models"
	"github.com/ialiagadev/physia-scheduler/internal/timezone"
)

type fakeRepo struct {
	mu sync.Mutex

	services      map[uint]models.Service
	professionals map[uint]models.User
	qualified     []uint

	schedules    []models.WorkSchedule
	breaks       map[uint][]models.ScheduleBreak
	absences     []models.AbsenceRequest
	appointments []models.Appointment
	groups       []models.GroupActivity

	// failFor makes every commitment read for that professional fail.
	failFor map[uint]error

	calls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		services:      map[uint]models.Service{},
		professionals: map[uint]models.User{},
		breaks:        map[uint][]models.ScheduleBreak{},
		failFor:       map[uint]error{},
	}
}

func (f *fakeRepo) track() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeRepo) GetService(_ context.Context, _ uint, serviceID uint) (*models.Service, error) {
	f.track()
	s, ok := f.services[serviceID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (f *fakeRepo) GetProfessional(_ context.Context, _ uint, professionalID uint) (*models.User, error) {
	f.track()
	p, ok := f.professionals[professionalID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (f *fakeRepo) ListQualifiedProfessionals(_ context.Context, _ uint, _ uint) ([]models.User, error) {
	f.track()
	out := make([]models.User, 0, len(f.qualified))
	for _, id := range f.qualified {
		out = append(out, f.professionals[id])
	}
	return out, nil
}

func (f *fakeRepo) ListExceptionSchedules(_ context.Context, _ uint, professionalID uint, date time.Time) ([]models.WorkSchedule, error) {
	f.track()
	var out []models.WorkSchedule
	for _, s := range f.schedules {
		if s.ProfessionalID == professionalID && s.Kind == models.ScheduleKindException &&
			s.ExceptionDate != nil && timezone.SameDate(*s.ExceptionDate, date) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListRegularSchedules(_ context.Context, _ uint, professionalID uint, dayOfWeek int) ([]models.WorkSchedule, error) {
	f.track()
	var out []models.WorkSchedule
	for _, s := range f.schedules {
		if s.ProfessionalID == professionalID && s.Active && s.Kind == models.ScheduleKindRegular &&
			s.DayOfWeek != nil && *s.DayOfWeek == dayOfWeek {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListScheduleBreaks(_ context.Context, scheduleID uint) ([]models.ScheduleBreak, error) {
	f.track()
	return f.breaks[scheduleID], nil
}

func (f *fakeRepo) ListApprovedAbsences(_ context.Context, _ uint, professionalID uint, _ time.Time) ([]models.AbsenceRequest, error) {
	f.track()
	if err := f.failFor[professionalID]; err != nil {
		return nil, err
	}
	var out []models.AbsenceRequest
	for _, a := range f.absences {
		if a.ProfessionalID == professionalID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListActiveAppointments(_ context.Context, _ uint, professionalID uint, date time.Time) ([]models.Appointment, error) {
	f.track()
	if err := f.failFor[professionalID]; err != nil {
		return nil, err
	}
	var out []models.Appointment
	for _, ap := range f.appointments {
		if ap.ProfessionalID == professionalID && timezone.SameDate(ap.Date, date) {
			out = append(out, ap)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListActiveGroupActivities(_ context.Context, _ uint, professionalID uint, date time.Time) ([]models.GroupActivity, error) {
	f.track()
	if err := f.failFor[professionalID]; err != nil {
		return nil, err
	}
	var out []models.GroupActivity
	for _, ga := range f.groups {
		if ga.ProfessionalID == professionalID && timezone.SameDate(ga.Date, date) {
			out = append(out, ga)
		}
	}
	return out, nil
}

var errStorage = errors.New("storage unavailable")

// ------------------------------------------------------
// fixtures
// ------------------------------------------------------

func weekday(d time.Weekday) *int {
	v := int(d)
	return &v
}

// mondayWorkday gives professional id a 09:00-17:00 Monday with lunch
// from 13:00 to 14:00.
func (f *fakeRepo) mondayWorkday(id uint, name string) {
	f.professionals[id] = models.User{ID: id, Name: name, Role: models.RoleProfessional, Active: true}
	f.schedules = append(f.schedules, models.WorkSchedule{
		ID:             id * 10,
		ProfessionalID: id,
		Kind:           models.ScheduleKindRegular,
		DayOfWeek:      weekday(time.Monday),
		StartTime:      "09:00",
		EndTime:        "17:00",
		BreakStart:     "13:00",
		BreakEnd:       "14:00",
		Active:         true,
	})
}

func fixedClock(t time.Time) func(string) time.Time {
	return func(string) time.Time { return t }
}

func noTimezone(context.Context, uint) string { return "UTC" }
