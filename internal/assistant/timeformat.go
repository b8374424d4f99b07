package assistant

import (
	"fmt"
	"math"
	"time"
)

// FormatRelativeTime renders an activity timestamp the way the feed shows
// it: under an hour collapses to minutes, a single hour and a single day
// get the article form, everything else is a rounded count.
func FormatRelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}

	if d < time.Minute {
		return "just now"
	}

	if d < time.Hour {
		minutes := int(d.Minutes())
		if minutes == 1 {
			return "a minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	}

	hours := int(math.Round(d.Hours()))
	if hours <= 1 {
		return "an hour ago"
	}
	if hours < 24 {
		return fmt.Sprintf("%d hours ago", hours)
	}

	days := int(math.Round(d.Hours() / 24))
	if days <= 1 {
		return "a day ago"
	}
	return fmt.Sprintf("%d days ago", days)
}
