package audit

import (
	"go.uber.org/zap"
)

type Event struct {
	OrganizationID uint
	UserID         *uint
	Action         string
	Entity         string
	EntityID       *uint
	Metadata       any
	RequestID      string
}

// Sink persists one event.
type Sink interface {
	Log(ev Event) error
}

type Dispatcher struct {
	sink  Sink
	log   *zap.Logger
	queue chan Event
	done  chan struct{}
}

func NewDispatcher(sink Sink, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		sink:  sink,
		log:   log,
		queue: make(chan Event, 100),
		done:  make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for ev := range d.queue {
		if err := d.sink.Log(ev); err != nil {
			d.log.Error("audit: failed to persist event",
				zap.String("action", ev.Action),
				zap.String("request_id", ev.RequestID),
				zap.Error(err),
			)
		}
	}
}

// Dispatch never blocks; when the queue is full the event is dropped.
func (d *Dispatcher) Dispatch(ev Event) {
	select {
	case d.queue <- ev:
	default:
		d.log.Warn("audit: queue full, dropping event", zap.String("action", ev.Action))
	}
}

// Close drains pending events. Dispatch must not be called afterwards.
func (d *Dispatcher) Close() {
	close(d.queue)
	<-d.done
}
