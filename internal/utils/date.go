package utils

import (
	"fmt"
	"time"
)

// CalcDday renders the D-day badge for a group start date: "D-7", "D-DAY",
// or "D+3" once the date has passed.
func CalcDday(start time.Time) string {
	today := time.Now().Truncate(24 * time.Hour)
	start = start.Truncate(24 * time.Hour)
	days := int(start.Sub(today).Hours() / 24)

	switch {
	case days > 0:
		return fmt.Sprintf("D-%d", days)
	case days == 0:
		return "D-DAY"
	default:
		return fmt.Sprintf("D+%d", -days)
	}
}
