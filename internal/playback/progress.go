package playback

import (
	"math"

	"github.com/samber/lo"
)

// ProgressPercent converts a playback position into a whole percentage of the duration.  A missing, zero or
// otherwise unusable duration is treated as 1 so the division is always defined.  The result is clamped to [0,100].
func ProgressPercent(position, duration float64) int {
	if duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		duration = 1
	}
	if math.IsNaN(position) || position <= 0 {
		return 0
	}

	pct := math.Floor(position / duration * 100)
	return int(lo.Clamp(pct, 0, 100))
}
