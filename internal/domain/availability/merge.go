package availability

import "sort"

// ProfessionalSlots is one candidate's computed availability.
type ProfessionalSlots struct {
	ProfessionalID   uint
	ProfessionalName string
	Slots            []Slot
}

// Merge collapses per-professional availability into one list keyed by time
// window. Candidates are consumed in order, so for a duplicated window the
// earliest candidate keeps the attribution.
func Merge(candidates []ProfessionalSlots) []TimeSlot {
	owners := make(map[Slot]TimeSlot)

	for _, c := range candidates {
		id := c.ProfessionalID
		for _, s := range c.Slots {
			if _, taken := owners[s]; taken {
				continue
			}
			owners[s] = TimeSlot{
				StartTime:        MinutesToTime(s.Start),
				EndTime:          MinutesToTime(s.End),
				Available:        true,
				ProfessionalID:   &id,
				ProfessionalName: c.ProfessionalName,
			}
		}
	}

	keys := make([]Slot, 0, len(owners))
	for k := range owners {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Start != keys[j].Start {
			return keys[i].Start < keys[j].Start
		}
		return keys[i].End < keys[j].End
	})

	out := make([]TimeSlot, 0, len(keys))
	for _, k := range keys {
		out = append(out, owners[k])
	}
	return out
}
