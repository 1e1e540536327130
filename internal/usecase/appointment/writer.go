package appointment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	domain "github.com/ialiagadev/physia-scheduler/internal/domain/appointment"
	"github.com/ialiagadev/physia-scheduler/internal/httperr"
	"github.com/ialiagadev/physia-scheduler/internal/models"
)

const (
	DefaultBatchSize  = 50
	DefaultBatchPause = 100 * time.Millisecond
	DefaultLockTTL    = 10 * time.Second
)

type WriterConfig struct {
	BatchSize  int
	BatchPause time.Duration
	LockTTL    time.Duration
}

// Writer persists one appointment or a whole series. Series rows are stamped
// from a template and inserted in sequential batches; a failing batch stops
// the series but leaves earlier batches committed.
type Writer struct {
	repo   domain.Repository
	locker domain.Locker
	log    *zap.Logger

	batchSize int
	pause     time.Duration
	lockTTL   time.Duration

	sleep func(ctx context.Context, d time.Duration) error
}

// NewWriter builds a writer. locker may be nil, in which case only the
// storage-level conflict check guards concurrent bookings.
func NewWriter(
	repo domain.Repository,
	locker domain.Locker,
	log *zap.Logger,
	cfg WriterConfig,
) *Writer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BatchPause < 0 {
		cfg.BatchPause = DefaultBatchPause
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultLockTTL
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Writer{
		repo:      repo,
		locker:    locker,
		log:       log,
		batchSize: cfg.BatchSize,
		pause:     cfg.BatchPause,
		lockTTL:   cfg.LockTTL,
		sleep:     sleepCtx,
	}
}

// WriteOne persists a single appointment.
func (w *Writer) WriteOne(
	ctx context.Context,
	ap models.Appointment,
) (*models.Appointment, error) {

	release, err := w.lock(ctx, ap.ProfessionalID)
	if err != nil {
		return nil, err
	}
	defer release()

	rows := []models.Appointment{ap}
	if err := w.repo.CreateAppointments(ctx, rows); err != nil {
		return nil, mapWriteError(err)
	}
	return &rows[0], nil
}

// WriteSeries stamps template onto every date. It returns whatever was
// committed before a failure together with the error.
func (w *Writer) WriteSeries(
	ctx context.Context,
	template models.Appointment,
	dates []time.Time,
) ([]models.Appointment, error) {

	if len(dates) == 0 {
		return nil, httperr.ErrBusiness("no_dates_generated")
	}

	release, err := w.lock(ctx, template.ProfessionalID)
	if err != nil {
		return nil, err
	}
	defer release()

	committed := make([]models.Appointment, 0, len(dates))

	for from := 0; from < len(dates); from += w.batchSize {
		if from > 0 && w.pause > 0 {
			if err := w.sleep(ctx, w.pause); err != nil {
				return committed, err
			}
		}

		to := min(from+w.batchSize, len(dates))

		batch := make([]models.Appointment, 0, to-from)
		for _, d := range dates[from:to] {
			batch = append(batch, domain.Stamp(template, d))
		}

		if err := w.repo.CreateAppointments(ctx, batch); err != nil {
			w.log.Warn("appointment series stopped",
				zap.Uint("professional_id", template.ProfessionalID),
				zap.Int("committed", len(committed)),
				zap.Int("requested", len(dates)),
				zap.Error(err),
			)
			return committed, mapWriteError(err)
		}
		committed = append(committed, batch...)
	}

	return committed, nil
}

func (w *Writer) lock(ctx context.Context, professionalID uint) (func(), error) {
	if w.locker == nil {
		return func() {}, nil
	}

	key := fmt.Sprintf("booking:professional:%d", professionalID)

	token, acquired, err := w.locker.TryLock(ctx, key, w.lockTTL)
	if err != nil {
		// the transactional conflict check still applies
		w.log.Warn("booking lock unavailable", zap.String("key", key), zap.Error(err))
		return func() {}, nil
	}
	if !acquired {
		return nil, httperr.ErrBusiness("booking_in_progress")
	}

	return func() {
		if err := w.locker.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
			w.log.Warn("booking lock release failed", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

func mapWriteError(err error) error {
	if httperr.IsExclusionConflict(err) {
		return httperr.ErrBusiness("time_conflict")
	}
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
