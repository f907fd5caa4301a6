package format

import (
	"fmt"
	"strconv"
	"time"
)

// Clock renders seconds as m:ss, e.g. 3600 -> "60:00", 45 -> "0:45".
func Clock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// Interval renders a gap between records; zero means "no previous record".
// Examples: 0 -> "--", 45 -> "45s", 240 -> "4m", 255 -> "4m 15s".
func Interval(seconds int) string {
	if seconds <= 0 {
		return "--"
	}
	mins, secs := seconds/60, seconds%60
	switch {
	case mins == 0:
		return fmt.Sprintf("%ds", secs)
	case secs == 0:
		return fmt.Sprintf("%dm", mins)
	default:
		return fmt.Sprintf("%dm %ds", mins, secs)
	}
}

// Dash is shown in place of an interval longer than an hour or for the first record of a day.
const Dash = "--:--"

func StartTime(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format("15:04")
}

// OneDecimal formats averages such as movements per session.
func OneDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
