package availability

import (
	"context"
	"sort"
	"time"

	domain "github.com/ialiagadev/physia-scheduler/internal/domain/availability"
	"github.com/ialiagadev/physia-scheduler/internal/models"
)

// ResolvedSchedule is the single schedule that applies to a date plus its breaks.
type ResolvedSchedule struct {
	Schedule models.WorkSchedule
	Breaks   []models.ScheduleBreak
}

// Block converts the schedule into minute-of-day intervals for the generator.
func (r *ResolvedSchedule) Block() (domain.Block, []domain.Interval) {
	block := domain.Block{
		Start: domain.TimeToMinutes(r.Schedule.StartTime),
		End:   domain.TimeToMinutes(r.Schedule.EndTime),
	}
	if r.Schedule.BreakStart != "" && r.Schedule.BreakEnd != "" {
		primary := domain.NewInterval(r.Schedule.BreakStart, r.Schedule.BreakEnd)
		block.Break = &primary
	}

	breaks := make([]domain.Interval, 0, len(r.Breaks))
	for _, b := range r.Breaks {
		breaks = append(breaks, domain.NewInterval(b.StartTime, b.EndTime))
	}
	return block, breaks
}

type ScheduleResolver struct {
	repo domain.Repository
}

func NewScheduleResolver(repo domain.Repository) *ScheduleResolver {
	return &ScheduleResolver{repo: repo}
}

// Resolve returns nil, nil when the professional does not work that day.
// An exception for the exact date wins over the weekly schedule, and an
// inactive exception closes the day.
func (r *ScheduleResolver) Resolve(
	ctx context.Context,
	organizationID uint,
	professionalID uint,
	date time.Time,
) (*ResolvedSchedule, error) {

	exceptions, err := r.repo.ListExceptionSchedules(ctx, organizationID, professionalID, date)
	if err != nil {
		return nil, err
	}

	var chosen *models.WorkSchedule
	if len(exceptions) > 0 {
		if !exceptions[0].Active {
			return nil, nil
		}
		chosen = &exceptions[0]
	} else {
		regular, err := r.repo.ListRegularSchedules(ctx, organizationID, professionalID, int(date.Weekday()))
		if err != nil {
			return nil, err
		}
		if len(regular) == 0 {
			return nil, nil
		}
		chosen = &regular[0]
	}

	breaks, err := r.repo.ListScheduleBreaks(ctx, chosen.ID)
	if err != nil {
		return nil, err
	}

	active := make([]models.ScheduleBreak, 0, len(breaks))
	for _, b := range breaks {
		if b.Active {
			active = append(active, b)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return domain.TimeToMinutes(active[i].StartTime) < domain.TimeToMinutes(active[j].StartTime)
	})

	return &ResolvedSchedule{Schedule: *chosen, Breaks: active}, nil
}
