package availability

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	appointmentDomain "github.com/ialiagadev/physia-scheduler/internal/domain/appointment"
	domain "github.com/ialiagadev/physia-scheduler/internal/domain/availability"
	"github.com/ialiagadev/physia-scheduler/internal/models"
	"github.com/ialiagadev/physia-scheduler/internal/timezone"
)

// Commitments is everything that occupies a professional on one date.
type Commitments struct {
	Absences        []models.AbsenceRequest
	Appointments    []models.Appointment
	GroupActivities []models.GroupActivity
}

// OnAbsence is true when an approved absence covers the date. It overrides
// any configured working hours.
func (c *Commitments) OnAbsence() bool {
	return len(c.Absences) > 0
}

func (c *Commitments) Busy() (appointments []domain.Interval, groups []domain.Interval) {
	appointments = make([]domain.Interval, 0, len(c.Appointments))
	for _, ap := range c.Appointments {
		appointments = append(appointments, domain.NewInterval(ap.StartTime, ap.EndTime))
	}
	groups = make([]domain.Interval, 0, len(c.GroupActivities))
	for _, ga := range c.GroupActivities {
		groups = append(groups, domain.NewInterval(ga.StartTime, ga.EndTime))
	}
	return appointments, groups
}

type CommitmentLoader struct {
	repo domain.Repository
}

func NewCommitmentLoader(repo domain.Repository) *CommitmentLoader {
	return &CommitmentLoader{repo: repo}
}

// Load issues the three reads concurrently; they are independent.
func (l *CommitmentLoader) Load(
	ctx context.Context,
	organizationID uint,
	professionalID uint,
	date time.Time,
) (*Commitments, error) {

	var (
		absences     []models.AbsenceRequest
		appointments []models.Appointment
		groups       []models.GroupActivity
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := l.repo.ListApprovedAbsences(gctx, organizationID, professionalID, date)
		absences = rows
		return err
	})
	g.Go(func() error {
		rows, err := l.repo.ListActiveAppointments(gctx, organizationID, professionalID, date)
		appointments = rows
		return err
	})
	g.Go(func() error {
		rows, err := l.repo.ListActiveGroupActivities(gctx, organizationID, professionalID, date)
		groups = rows
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Commitments{}
	for _, a := range absences {
		if a.Status == models.AbsenceStatusApproved && covers(a, date) {
			out.Absences = append(out.Absences, a)
		}
	}
	for _, ap := range appointments {
		if appointmentDomain.BlocksTime(ap.Status) {
			out.Appointments = append(out.Appointments, ap)
		}
	}
	for _, ga := range groups {
		if appointmentDomain.BlocksTime(ga.Status) {
			out.GroupActivities = append(out.GroupActivities, ga)
		}
	}
	return out, nil
}

// covers compares calendar dates only; EndDate is inclusive.
func covers(a models.AbsenceRequest, date time.Time) bool {
	day := date.Format(timezone.DateLayout)
	return a.StartDate.Format(timezone.DateLayout) <= day && day <= a.EndDate.Format(timezone.DateLayout)
}
