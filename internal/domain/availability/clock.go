package availability

import (
	"fmt"
	"strconv"
	"strings"
)

// TimeToMinutes converts "HH:MM" (or "HH:MM:SS") into minutes since midnight.
// Empty or malformed input yields 0.
func TimeToMinutes(hm string) int {
	hm = strings.TrimSpace(hm)
	if hm == "" {
		return 0
	}

	hStr, rest, ok := strings.Cut(hm, ":")
	if !ok {
		return 0
	}
	mStr, _, _ := strings.Cut(rest, ":")

	h, err := strconv.Atoi(hStr)
	if err != nil {
		return 0
	}
	m, err := strconv.Atoi(mStr)
	if err != nil {
		return 0
	}
	return h*60 + m
}

func MinutesToTime(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Overlaps tests half-open intervals [startA,endA) and [startB,endB).
func Overlaps(startA, endA, startB, endB int) bool {
	return startA < endB && startB < endA
}
