package availability

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	someDay  = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	otherDay = time.Date(2024, 1, 9, 8, 0, 0, 0, time.UTC)
)

func workday() Block {
	lunch := NewInterval("13:00", "14:00")
	return Block{
		Start: TimeToMinutes("09:00"),
		End:   TimeToMinutes("17:00"),
		Break: &lunch,
	}
}

func starts(slots []Slot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, MinutesToTime(s.Start))
	}
	return out
}

func TestGenerateSlots_WorkdayWithLunch(t *testing.T) {
	slots, err := GenerateSlots(GenerateInput{
		Block:    workday(),
		Duration: 30,
		Date:     someDay,
		Now:      otherDay,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"09:00", "09:30", "10:00", "10:30", "11:00", "11:30", "12:00", "12:30",
		"14:00", "14:30", "15:00", "15:30", "16:00", "16:30",
	}, starts(slots))

	for _, s := range slots {
		assert.Equal(t, 30, s.End-s.Start)
		assert.False(t, Overlaps(s.Start, s.End, 780, 840))
	}
}

func TestGenerateSlots_SkipsAppointment(t *testing.T) {
	slots, err := GenerateSlots(GenerateInput{
		Block:        workday(),
		Appointments: []Interval{NewInterval("10:00", "10:30")},
		Duration:     30,
		Date:         someDay,
		Now:          otherDay,
	})
	require.NoError(t, err)

	got := starts(slots)
	assert.NotContains(t, got, "10:00")
	assert.Contains(t, got, "09:30")
	assert.Contains(t, got, "10:30")
	assert.Len(t, got, 13)
}

func TestGenerateSlots_SkipsGroupActivity(t *testing.T) {
	slots, err := GenerateSlots(GenerateInput{
		Block:           workday(),
		GroupActivities: []Interval{NewInterval("15:00", "16:00")},
		Duration:        30,
		Date:            someDay,
		Now:             otherDay,
	})
	require.NoError(t, err)

	got := starts(slots)
	assert.NotContains(t, got, "15:00")
	assert.NotContains(t, got, "15:30")
	assert.Contains(t, got, "16:00")
}

func TestGenerateSlots_TodayCutoff(t *testing.T) {
	now := time.Date(2024, 1, 10, 10, 12, 0, 0, time.UTC)

	slots, err := GenerateSlots(GenerateInput{
		Block:    workday(),
		Duration: 30,
		Date:     someDay,
		Now:      now,
	})
	require.NoError(t, err)

	require.NotEmpty(t, slots)
	assert.Equal(t, "10:30", MinutesToTime(slots[0].Start))
	for _, s := range slots {
		assert.Greater(t, s.Start, TimeToMinutes("10:17"))
	}
}

func TestGenerateSlots_CutoffIsInclusive(t *testing.T) {
	// 09:55 + 5 = 10:00, so the 10:00 slot is still too soon
	now := time.Date(2024, 1, 10, 9, 55, 0, 0, time.UTC)

	slots, err := GenerateSlots(GenerateInput{
		Block:    Block{Start: TimeToMinutes("09:00"), End: TimeToMinutes("11:00")},
		Duration: 30,
		Date:     someDay,
		Now:      now,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"10:30"}, starts(slots))
}

func TestGenerateSlots_EdgeCases(t *testing.T) {
	t.Run("schedule shorter than duration", func(t *testing.T) {
		slots, err := GenerateSlots(GenerateInput{
			Block:    Block{Start: TimeToMinutes("09:00"), End: TimeToMinutes("09:20")},
			Duration: 30,
			Date:     someDay,
			Now:      otherDay,
		})
		require.NoError(t, err)
		assert.Empty(t, slots)
	})

	t.Run("break covers the whole schedule", func(t *testing.T) {
		slots, err := GenerateSlots(GenerateInput{
			Block:    Block{Start: TimeToMinutes("09:00"), End: TimeToMinutes("12:00")},
			Breaks:   []Interval{NewInterval("09:00", "12:00")},
			Duration: 30,
			Date:     someDay,
			Now:      otherDay,
		})
		require.NoError(t, err)
		assert.Empty(t, slots)
	})

	t.Run("slot ending at break start is free", func(t *testing.T) {
		slots, err := GenerateSlots(GenerateInput{
			Block:    Block{Start: TimeToMinutes("12:00"), End: TimeToMinutes("13:30")},
			Breaks:   []Interval{NewInterval("12:30", "13:00")},
			Duration: 30,
			Date:     someDay,
			Now:      otherDay,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"12:00", "13:00"}, starts(slots))
	})

	t.Run("cursor jumps to the end of an unaligned break", func(t *testing.T) {
		slots, err := GenerateSlots(GenerateInput{
			Block:    Block{Start: TimeToMinutes("09:00"), End: TimeToMinutes("12:00")},
			Breaks:   []Interval{NewInterval("10:10", "10:50")},
			Duration: 30,
			Date:     someDay,
			Now:      otherDay,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"09:00", "09:30", "10:50", "11:20"}, starts(slots))
	})

	t.Run("non positive duration", func(t *testing.T) {
		_, err := GenerateSlots(GenerateInput{Block: workday(), Duration: 0})
		assert.ErrorIs(t, err, ErrInvalidDuration)

		_, err = GenerateSlots(GenerateInput{Block: workday(), Duration: -15})
		assert.ErrorIs(t, err, ErrInvalidDuration)
	})

	t.Run("negative step", func(t *testing.T) {
		_, err := GenerateSlots(GenerateInput{Block: workday(), Duration: 30, Options: Options{Step: -5}})
		assert.ErrorIs(t, err, ErrInvalidStep)
	})
}

func TestGenerateSlots_GridWithPreferredTime(t *testing.T) {
	preferred := TimeToMinutes("10:00")

	slots, err := GenerateSlots(GenerateInput{
		Block:    Block{Start: TimeToMinutes("09:00"), End: TimeToMinutes("11:00")},
		Duration: 30,
		Date:     someDay,
		Now:      otherDay,
		Options: Options{
			Step:          15,
			PreferredTime: &preferred,
			Tolerance:     15,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"09:45", "10:00", "10:15"}, starts(slots))
}

func TestGenerateSlots_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 300; i++ {
		start := rng.Intn(12) * 30
		block := Block{Start: 420 + start, End: 420 + start + 60 + rng.Intn(600)}
		duration := []int{15, 20, 30, 45, 60}[rng.Intn(5)]

		randomIntervals := func(n int) []Interval {
			out := make([]Interval, 0, n)
			for j := 0; j < n; j++ {
				s := block.Start + rng.Intn(block.End-block.Start)
				out = append(out, Interval{Start: s, End: s + 5 + rng.Intn(90)})
			}
			return out
		}

		in := GenerateInput{
			Block:           block,
			Breaks:          randomIntervals(rng.Intn(3)),
			Appointments:    randomIntervals(rng.Intn(5)),
			GroupActivities: randomIntervals(rng.Intn(2)),
			Duration:        duration,
			Date:            someDay,
			Now:             someDay.Add(time.Duration(rng.Intn(24*60)) * time.Minute),
		}

		slots, err := GenerateSlots(in)
		require.NoError(t, err)

		cutoff := in.Now.Hour()*60 + in.Now.Minute() + TodayLeadMinutes
		prev := -1
		for _, s := range slots {
			assert.Equal(t, duration, s.End-s.Start)
			assert.GreaterOrEqual(t, s.Start, block.Start)
			assert.LessOrEqual(t, s.End, block.End)
			assert.Greater(t, s.Start, cutoff)
			assert.Greater(t, s.Start, prev)
			prev = s.Start

			for _, group := range [][]Interval{in.Breaks, in.Appointments, in.GroupActivities} {
				for _, iv := range group {
					assert.False(t, Overlaps(s.Start, s.End, iv.Start, iv.End))
				}
			}
		}
	}
}
