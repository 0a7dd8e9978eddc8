package srs

import (
	"fmt"
	"math"
	"time"
)

// FormatInterval renders a review delay the way the review buttons show it:
// "<1m", "<6m", "<10m", "3h", "4d", "1.5mo", "2.1y".
func FormatInterval(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "<1m"
	case d < time.Hour:
		return fmt.Sprintf("<%dm", int(math.Ceil(d.Minutes())))
	case d < day:
		return fmt.Sprintf("%dh", int(math.Round(d.Hours())))
	}

	days := d.Hours() / 24
	switch {
	case days < 30:
		return fmt.Sprintf("%dd", int(math.Round(days)))
	case days < 365:
		return fmt.Sprintf("%.1fmo", days/30)
	default:
		return fmt.Sprintf("%.1fy", days/365)
	}
}
