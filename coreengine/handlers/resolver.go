package handlers

import (
	"strings"
	"time"
)

// weekdayTargets maps weekday words to Monday-based indices (Monday = 0).
var weekdayTargets = []struct {
	word   string
	target int
}{
	{"monday", 0},
	{"tuesday", 1},
	{"wednesday", 2},
	{"thursday", 3},
	{"friday", 4},
}

// ResolveWindow turns a free-text date preference into a concrete search
// window. Day resolution: "today", "tomorrow", "next week" (+7 days), or a
// weekday name rolled forward to the next occurrence; anything else means
// tomorrow. Time of day: morning 09-12, afternoon 14-17, evening 17-20,
// default business hours 09-17. Matching is by lowercase substring, so
// "tomorrow afternoon" resolves both parts.
func ResolveWindow(preference string, now time.Time) (time.Time, time.Time) {
	lower := strings.ToLower(preference)

	target := now.AddDate(0, 0, 1)
	switch {
	case strings.Contains(lower, "today"):
		target = now
	case strings.Contains(lower, "tomorrow"):
		target = now.AddDate(0, 0, 1)
	case strings.Contains(lower, "next week"):
		target = now.AddDate(0, 0, 7)
	default:
		for _, wd := range weekdayTargets {
			if strings.Contains(lower, wd.word) {
				daysAhead := wd.target - mondayBasedWeekday(now)
				if daysAhead <= 0 {
					daysAhead += 7
				}
				target = now.AddDate(0, 0, daysAhead)
				break
			}
		}
	}

	startHour, endHour := 9, 17
	switch {
	case strings.Contains(lower, "morning"):
		startHour, endHour = 9, 12
	case strings.Contains(lower, "afternoon"):
		startHour, endHour = 14, 17
	case strings.Contains(lower, "evening"):
		startHour, endHour = 17, 20
	}

	start := time.Date(target.Year(), target.Month(), target.Day(), startHour, 0, 0, 0, target.Location())
	end := time.Date(target.Year(), target.Month(), target.Day(), endHour, 0, 0, 0, target.Location())
	return start, end
}

// mondayBasedWeekday returns the weekday with Monday as 0 and Sunday as 6.
func mondayBasedWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
