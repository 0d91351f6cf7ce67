package cli

import (
	"fmt"
	"time"
)

// FormatElapsed formats a duration as seconds with one decimal, or M:SS
// from one minute on.
func FormatElapsed(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	totalSeconds := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", totalSeconds/60, totalSeconds%60)
}
