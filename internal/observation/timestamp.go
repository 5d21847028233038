package observation

import (
	"fmt"
	"time"
)

// FormatTimestamp renders t as "D.M.YYYY H:MM" in t's own location.
// Day, month and hour are not zero padded; minutes always are.
func FormatTimestamp(t time.Time) string {
	return fmt.Sprintf("%d.%d.%d %d:%02d", t.Day(), int(t.Month()), t.Year(), t.Hour(), t.Minute())
}
