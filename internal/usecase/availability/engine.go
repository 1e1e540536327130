package availability

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	domain "github.com/ialiagadev/physia-scheduler/internal/domain/availability"
)

// TimezoneLookup returns the IANA zone of an organization, or "" for the default.
type TimezoneLookup func(ctx context.Context, organizationID uint) string

// slotEngine runs resolver, loader and generator for one professional.
type slotEngine struct {
	resolver *ScheduleResolver
	loader   *CommitmentLoader
}

func newSlotEngine(repo domain.Repository) *slotEngine {
	return &slotEngine{
		resolver: NewScheduleResolver(repo),
		loader:   NewCommitmentLoader(repo),
	}
}

type slotQuery struct {
	OrganizationID uint
	ProfessionalID uint
	Date           time.Time
	Now            time.Time
	Duration       int
	Options        domain.Options
}

func (e *slotEngine) slotsFor(ctx context.Context, q slotQuery) ([]domain.Slot, error) {
	var (
		resolved    *ResolvedSchedule
		commitments *Commitments
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		resolved, err = e.resolver.Resolve(gctx, q.OrganizationID, q.ProfessionalID, q.Date)
		return err
	})
	g.Go(func() error {
		var err error
		commitments, err = e.loader.Load(gctx, q.OrganizationID, q.ProfessionalID, q.Date)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if commitments.OnAbsence() || resolved == nil {
		return []domain.Slot{}, nil
	}

	block, breaks := resolved.Block()
	appointments, groups := commitments.Busy()

	return domain.GenerateSlots(domain.GenerateInput{
		Block:           block,
		Breaks:          breaks,
		Appointments:    appointments,
		GroupActivities: groups,
		Duration:        q.Duration,
		Date:            q.Date,
		Now:             q.Now,
		Options:         q.Options,
	})
}
