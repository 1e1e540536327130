package availability

import "time"

// Interval is a half-open minute-of-day range.
type Interval struct {
	Start int
	End   int
}

func NewInterval(start, end string) Interval {
	return Interval{Start: TimeToMinutes(start), End: TimeToMinutes(end)}
}

// Block is the working-hours window resolved for one professional and date.
type Block struct {
	Start int
	End   int
	// Break is the schedule's own primary break, if any.
	Break *Interval
}

type Slot struct {
	Start int
	End   int
}

// Options tunes the walk. The zero value steps by the slot duration.
type Options struct {
	// Step, when > 0, advances the cursor by Step minutes instead of by the duration.
	Step int
	// PreferredTime, when set, keeps only slots starting within Tolerance minutes of it.
	PreferredTime *int
	Tolerance     int
}

type GenerateInput struct {
	Block           Block
	Breaks          []Interval
	Appointments    []Interval
	GroupActivities []Interval

	Duration int
	Date     time.Time
	Now      time.Time
	Options  Options
}

// TimeSlot is the public shape of a bookable slot.
type TimeSlot struct {
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
	Available        bool   `json:"available"`
	ProfessionalID   *uint  `json:"professional_id,omitempty"`
	ProfessionalName string `json:"professional_name,omitempty"`
}

func ToTimeSlots(slots []Slot) []TimeSlot {
	out := make([]TimeSlot, 0, len(slots))
	for _, s := range slots {
		out = append(out, TimeSlot{
			StartTime: MinutesToTime(s.Start),
			EndTime:   MinutesToTime(s.End),
			Available: true,
		})
	}
	return out
}
