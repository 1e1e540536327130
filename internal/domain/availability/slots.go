package availability

import (
	"errors"

	"github.com/ialiagadev/physia-scheduler/internal/timezone"
)

// TodayLeadMinutes is the minimum gap between "now" and a same-day slot start.
const TodayLeadMinutes = 5

var (
	ErrInvalidDuration = errors.New("availability: slot duration must be positive")
	ErrInvalidStep     = errors.New("availability: step must not be negative")
)

// GenerateSlots walks the block with a cursor and returns the free slots in
// ascending order. A slot hitting a break moves the cursor to the end of that
// break; every other rejection advances by a single step.
func GenerateSlots(in GenerateInput) ([]Slot, error) {
	if in.Duration <= 0 {
		return nil, ErrInvalidDuration
	}
	if in.Options.Step < 0 {
		return nil, ErrInvalidStep
	}

	step := in.Duration
	if in.Options.Step > 0 {
		step = in.Options.Step
	}

	breaks := make([]Interval, 0, len(in.Breaks)+1)
	if in.Block.Break != nil {
		breaks = append(breaks, *in.Block.Break)
	}
	breaks = append(breaks, in.Breaks...)

	isToday := timezone.SameDate(in.Date, in.Now)
	cutoff := timezone.MinutesOfDay(in.Now) + TodayLeadMinutes

	slots := make([]Slot, 0)
	cursor := in.Block.Start

	for cursor+in.Duration <= in.Block.End {
		slotStart := cursor
		slotEnd := cursor + in.Duration

		if isToday && slotStart <= cutoff {
			cursor += step
			continue
		}

		if breakEnd, hit := obstructingBreak(breaks, slotStart, slotEnd); hit {
			cursor = max(cursor+step, breakEnd)
			continue
		}

		if overlapsAny(in.Appointments, slotStart, slotEnd) ||
			overlapsAny(in.GroupActivities, slotStart, slotEnd) {
			cursor += step
			continue
		}

		if in.Options.PreferredTime == nil || abs(slotStart-*in.Options.PreferredTime) <= in.Options.Tolerance {
			slots = append(slots, Slot{Start: slotStart, End: slotEnd})
		}
		cursor += step
	}

	return slots, nil
}

// obstructingBreak returns the furthest end among breaks overlapping the slot.
func obstructingBreak(breaks []Interval, start, end int) (int, bool) {
	furthest, hit := 0, false
	for _, b := range breaks {
		if Overlaps(start, end, b.Start, b.End) {
			if !hit || b.End > furthest {
				furthest = b.End
			}
			hit = true
		}
	}
	return furthest, hit
}

func overlapsAny(intervals []Interval, start, end int) bool {
	for _, iv := range intervals {
		if Overlaps(start, end, iv.Start, iv.End) {
			return true
		}
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
