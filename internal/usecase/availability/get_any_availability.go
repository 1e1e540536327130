package availability

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	domain "github.com/ialiagadev/physia-scheduler/internal/domain/availability"
	"github.com/ialiagadev/physia-scheduler/internal/httperr"
	"github.com/ialiagadev/physia-scheduler/internal/models"
	"github.com/ialiagadev/physia-scheduler/internal/timezone"
)

const defaultFanout = 8

type GetAnyAvailabilityInput struct {
	OrganizationID uint
	ServiceID      uint
	// ProfessionalIDs restricts the candidates; empty means every
	// professional qualified for the service.
	ProfessionalIDs []uint

	Date     string
	Duration int
	Options  domain.Options
}

// GetAnyAvailability answers "who can see me, and when" across professionals.
type GetAnyAvailability struct {
	repo   domain.Repository
	engine *slotEngine
	log    *zap.Logger
	fanout int
	now    func(tz string) time.Time
	tzOf   TimezoneLookup
}

func NewGetAnyAvailability(
	repo domain.Repository,
	orgTimezone TimezoneLookup,
	log *zap.Logger,
	fanout int,
) *GetAnyAvailability {
	if fanout <= 0 {
		fanout = defaultFanout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &GetAnyAvailability{
		repo:   repo,
		engine: newSlotEngine(repo),
		log:    log,
		fanout: fanout,
		now:    timezone.NowIn,
		tzOf:   orgTimezone,
	}
}

func (uc *GetAnyAvailability) WithClock(now func(tz string) time.Time) *GetAnyAvailability {
	uc.now = now
	return uc
}

func (uc *GetAnyAvailability) Execute(
	ctx context.Context,
	in GetAnyAvailabilityInput,
) ([]domain.TimeSlot, error) {

	req, err := prepare(ctx, uc.repo, uc.tzOf, uc.now, in.OrganizationID, in.ServiceID, in.Date, in.Duration)
	if err != nil {
		return nil, err
	}
	if in.Options.Step < 0 {
		return nil, httperr.ErrBusiness("invalid_step")
	}

	candidates, err := uc.candidates(ctx, in)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []domain.TimeSlot{}, nil
	}

	results := make([]domain.ProfessionalSlots, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.fanout)

	for i, p := range candidates {
		i, p := i, p // per-iteration copies (go directive < 1.22)
		g.Go(func() error {
			slots, err := uc.engine.slotsFor(gctx, slotQuery{
				OrganizationID: in.OrganizationID,
				ProfessionalID: p.ID,
				Date:           req.date,
				Now:            req.now,
				Duration:       req.duration,
				Options:        in.Options,
			})
			if err != nil {
				// one failing professional must not hide the others
				uc.log.Warn("availability for professional failed",
					zap.Uint("organization_id", in.OrganizationID),
					zap.Uint("professional_id", p.ID),
					zap.Error(err),
				)
				slots = nil
			}
			results[i] = domain.ProfessionalSlots{
				ProfessionalID:   p.ID,
				ProfessionalName: p.Name,
				Slots:            slots,
			}
			return nil
		})
	}
	_ = g.Wait()

	return domain.Merge(results), nil
}

func (uc *GetAnyAvailability) candidates(
	ctx context.Context,
	in GetAnyAvailabilityInput,
) ([]models.User, error) {

	if len(in.ProfessionalIDs) == 0 {
		return uc.repo.ListQualifiedProfessionals(ctx, in.OrganizationID, in.ServiceID)
	}

	out := make([]models.User, 0, len(in.ProfessionalIDs))
	for _, id := range in.ProfessionalIDs {
		p, err := uc.repo.GetProfessional(ctx, in.OrganizationID, id)
		if err != nil {
			uc.log.Warn("skipping unknown professional",
				zap.Uint("organization_id", in.OrganizationID),
				zap.Uint("professional_id", id),
			)
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}
