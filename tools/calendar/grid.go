package calendar

import (
	"time"

	"github.com/costcare-ai/agentcore/coreengine/handlers"
)

// Period is a half-open busy interval [Start, End).
type Period struct {
	Start time.Time
	End   time.Time
}

// FreeWindows lays a fixed-duration grid over [rangeStart, rangeEnd) and
// returns the windows that do not overlap any busy period. The grid is
// anchored at rangeStart; a window that would extend past rangeEnd is
// dropped.
func FreeWindows(rangeStart, rangeEnd time.Time, busy []Period, duration time.Duration) []handlers.Window {
	if duration <= 0 || !rangeStart.Before(rangeEnd) {
		return nil
	}

	var windows []handlers.Window
	for t := rangeStart; !t.Add(duration).After(rangeEnd); t = t.Add(duration) {
		if overlapsAny(t, t.Add(duration), busy) {
			continue
		}
		windows = append(windows, handlers.Window{Start: t, End: t.Add(duration)})
	}
	return windows
}

func overlapsAny(start, end time.Time, busy []Period) bool {
	for _, p := range busy {
		if start.Before(p.End) && end.After(p.Start) {
			return true
		}
	}
	return false
}
