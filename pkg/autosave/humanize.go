package autosave

import (
	"fmt"
	"time"
)

// Humanize renders the age of a save relative to now. Divisions truncate.
// A zero lastSaved renders as "".
func Humanize(lastSaved, now time.Time) string {
	if lastSaved.IsZero() {
		return ""
	}
	diff := int64(now.Sub(lastSaved) / time.Second)
	switch {
	case diff < 60:
		return "just now"
	case diff < 3600:
		return fmt.Sprintf("%d min ago", diff/60)
	case diff < 86400:
		return fmt.Sprintf("%d hours ago", diff/3600)
	default:
		return fmt.Sprintf("%d days ago", diff/86400)
	}
}
