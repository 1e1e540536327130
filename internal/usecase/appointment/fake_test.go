package appointment

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ialiagadev/physia-scheduler/internal/audit"
	domain "github.com/ialiagadev/physia-scheduler/internal/domain/appointment"
	"github.com/ialiagadev/physia-scheduler/internal/domain/availability"
	"github.com/ialiagadev/physia-scheduler/internal/httperr"
	"github.com/ialiagadev/physia-scheduler/internal/models"
	"github.com/ialiagadev/physia-scheduler/internal/timezone"
)

var _ domain.Repository = (*fakeRepo)(nil)

type fakeRepo struct {
	mu sync.Mutex

	org           models.Organization
	professionals map[uint]models.User
	services      map[uint]models.Service
	clients       []models.Client

	rows   []models.Appointment
	nextID uint

	createCalls int
	// failOnCall makes the n-th CreateAppointments call (1-based) return failErr.
	failOnCall int
	failErr    error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		org:           models.Organization{ID: 1, Name: "Clinic", Slug: "clinic", Timezone: "UTC", MinAdvanceMinutes: 60},
		professionals: map[uint]models.User{7: {ID: 7, Name: "Ana", Active: true}},
		services:      map[uint]models.Service{1: {ID: 1, Name: "Physiotherapy", DurationMin: 45}},
		nextID:        1,
	}
}

func (f *fakeRepo) GetOrganizationByID(_ context.Context, id uint) (*models.Organization, error) {
	if id != f.org.ID {
		return nil, gorm.ErrRecordNotFound
	}
	org := f.org
	return &org, nil
}

func (f *fakeRepo) GetProfessional(_ context.Context, _ uint, id uint) (*models.User, error) {
	p, ok := f.professionals[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (f *fakeRepo) GetService(_ context.Context, _ uint, id uint) (*models.Service, error) {
	s, ok := f.services[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (f *fakeRepo) GetOrCreateClient(_ context.Context, orgID uint, name, phone, email string) (*models.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.clients {
		if f.clients[i].Phone == phone {
			return &f.clients[i], nil
		}
	}
	f.clients = append(f.clients, models.Client{
		ID: uint(len(f.clients) + 1), OrganizationID: orgID, Name: name, Phone: phone, Email: email,
	})
	return &f.clients[len(f.clients)-1], nil
}

func (f *fakeRepo) CreateAppointments(_ context.Context, aps []models.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.createCalls++
	if f.failOnCall == f.createCalls {
		return f.failErr
	}

	for _, ap := range aps {
		for _, existing := range f.rows {
			if existing.ProfessionalID == ap.ProfessionalID &&
				timezone.SameDate(existing.Date, ap.Date) &&
				domain.BlocksTime(existing.Status) &&
				availability.Overlaps(
					availability.TimeToMinutes(ap.StartTime), availability.TimeToMinutes(ap.EndTime),
					availability.TimeToMinutes(existing.StartTime), availability.TimeToMinutes(existing.EndTime),
				) {
				return httperr.ErrBusiness("time_conflict")
			}
		}
	}

	for i := range aps {
		aps[i].ID = f.nextID
		f.nextID++
		f.rows = append(f.rows, aps[i])
	}
	return nil
}

func (f *fakeRepo) GetAppointmentForProfessional(_ context.Context, _ uint, apptID, profID uint) (*models.Appointment, error) {
	for _, r := range f.rows {
		if r.ID == apptID && r.ProfessionalID == profID {
			ap := r
			return &ap, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) UpdateAppointment(_ context.Context, ap *models.Appointment) error {
	for i := range f.rows {
		if f.rows[i].ID == ap.ID {
			f.rows[i] = *ap
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepo) ListAppointmentsForPeriod(_ context.Context, _ uint, profID uint, from, to time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, r := range f.rows {
		day := r.Date.Format(timezone.DateLayout)
		if r.ProfessionalID == profID &&
			day >= from.Format(timezone.DateLayout) && day < to.Format(timezone.DateLayout) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepo) byID(id uint) models.Appointment {
	for _, r := range f.rows {
		if r.ID == id {
			return r
		}
	}
	return models.Appointment{}
}

// ------------------------------------------------------
// locker
// ------------------------------------------------------

type fakeLocker struct {
	held     map[string]string
	err      error
	unlocked []string
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: map[string]string{}}
}

func (l *fakeLocker) TryLock(_ context.Context, key string, _ time.Duration) (string, bool, error) {
	if l.err != nil {
		return "", false, l.err
	}
	if _, taken := l.held[key]; taken {
		return "", false, nil
	}
	l.held[key] = "token-" + key
	return l.held[key], true, nil
}

func (l *fakeLocker) Unlock(_ context.Context, key, token string) error {
	if l.held[key] == token {
		delete(l.held, key)
		l.unlocked = append(l.unlocked, key)
	}
	return nil
}

// ------------------------------------------------------
// audit
// ------------------------------------------------------

type memorySink struct {
	mu     sync.Mutex
	events []audit.Event
}

func (s *memorySink) Log(ev audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *memorySink) actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.Action)
	}
	return out
}

func newAudit() (*audit.Dispatcher, *memorySink) {
	sink := &memorySink{}
	return audit.NewDispatcher(sink, zap.NewNop()), sink
}

var errDisk = errors.New("disk full")

func noSleep(context.Context, time.Duration) error { return nil }
