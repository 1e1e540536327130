package recurrence

import (
	"fmt"
	"time"

	"github.com/ialiagadev/physia-scheduler/internal/httperr"
	"github.com/ialiagadev/physia-scheduler/internal/timezone"
)

type Unit string

const (
	UnitDaily   Unit = "daily"
	UnitWeekly  Unit = "weekly"
	UnitMonthly Unit = "monthly"
)

const (
	MaxInterval         = 12
	MaxHorizonMonths    = 24
	DefaultMaxInstances = 200
)

// Rule is a request-time instruction; it is never persisted.
type Rule struct {
	Unit     Unit
	Interval int
	EndDate  *time.Time
}

// Plan is the expansion of a rule from a seed date.
type Plan struct {
	Dates []time.Time
	// Truncated is set when the instance cap stopped the expansion early.
	Truncated bool
}

func (u Unit) Valid() bool {
	switch u {
	case UnitDaily, UnitWeekly, UnitMonthly:
		return true
	}
	return false
}

// Validate checks the rule against now. End dates are compared as calendar
// dates, so an end date of today is already in the past.
func (r Rule) Validate(now time.Time) error {
	if !r.Unit.Valid() {
		return httperr.ErrBusiness("invalid_recurrence_type")
	}

	if r.Interval <= 0 || r.Interval > MaxInterval {
		return httperr.ErrBusiness("invalid_recurrence_interval")
	}

	if r.EndDate == nil || r.EndDate.IsZero() {
		return httperr.ErrBusiness("recurrence_end_date_required")
	}

	end := timezone.StartOfDay(r.EndDate.In(now.Location()))
	if !end.After(now) {
		return httperr.ErrBusiness("recurrence_end_date_past")
	}

	if end.After(now.AddDate(0, MaxHorizonMonths, 0)) {
		return httperr.ErrBusiness("recurrence_end_date_too_far")
	}

	return nil
}

// Advance moves d forward by interval units. Month arithmetic follows
// time.AddDate normalisation (Jan 31 + 1 month = Mar 2 or 3).
func Advance(d time.Time, unit Unit, interval int) time.Time {
	switch unit {
	case UnitDaily:
		return d.AddDate(0, 0, interval)
	case UnitWeekly:
		return d.AddDate(0, 0, 7*interval)
	case UnitMonthly:
		return d.AddDate(0, interval, 0)
	}
	return d
}

// Expand lists the concrete dates of the series, seed first. It never returns
// more than maxInstances dates (DefaultMaxInstances when maxInstances <= 0).
// Callers are expected to Validate the rule first.
func Expand(seed time.Time, r Rule, maxInstances int) Plan {
	if maxInstances <= 0 {
		maxInstances = DefaultMaxInstances
	}

	current := timezone.StartOfDay(seed)
	plan := Plan{Dates: []time.Time{current}}

	if !r.Unit.Valid() || r.Interval <= 0 || r.EndDate == nil {
		return plan
	}

	end := timezone.StartOfDay(r.EndDate.In(seed.Location()))

	for {
		next := Advance(current, r.Unit, r.Interval)
		if next.After(end) {
			break
		}
		if len(plan.Dates) >= maxInstances {
			plan.Truncated = true
			break
		}
		plan.Dates = append(plan.Dates, next)
		current = next
	}

	return plan
}

// Describe renders the rule for humans, e.g. "Every 2 weeks until 2024-02-01".
func Describe(r Rule) string {
	var unit string
	switch r.Unit {
	case UnitDaily:
		unit = "day"
	case UnitWeekly:
		unit = "week"
	case UnitMonthly:
		unit = "month"
	default:
		return "Does not repeat"
	}

	var every string
	if r.Interval <= 1 {
		every = "Every " + unit
	} else {
		every = fmt.Sprintf("Every %d %ss", r.Interval, unit)
	}

	if r.EndDate == nil {
		return every
	}
	return every + " until " + r.EndDate.Format(timezone.DateLayout)
}
