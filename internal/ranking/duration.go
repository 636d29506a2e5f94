package ranking

import (
	"fmt"
	"math"
)

// FormatDuration renders hours as "45 min", "2 hr 15 min", or "1 day 3 hr"
func FormatDuration(hours float64) string {
	switch {
	case hours < 1:
		return fmt.Sprintf("%d min", int(math.Round(hours*60)))
	case hours < 24:
		h := int(hours)
		m := int(math.Round((hours - float64(h)) * 60))
		if m == 60 {
			h, m = h+1, 0
		}
		if m == 0 {
			return fmt.Sprintf("%d hr", h)
		}
		return fmt.Sprintf("%d hr %d min", h, m)
	default:
		days := int(hours / 24)
		h := int(math.Mod(hours, 24))
		suffix := ""
		if days > 1 {
			suffix = "s"
		}
		return fmt.Sprintf("%d day%s %d hr", days, suffix, h)
	}
}
