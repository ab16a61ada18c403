package ffmpeg

import (
	"strconv"
	"strings"
)

// parseTimeSeconds parses an ffmpeg time string into seconds. Accepted
// forms are `HH:MM:SS.mmm`, `MM:SS.mmm`, and bare seconds; see
// https://trac.ffmpeg.org/wiki/Seeking#Timeunitsyntax. Returns false
// for `N/A` and anything else non-numeric.
func parseTimeSeconds(s string) (float64, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) == 0 || len(parts) > 3 {
		return 0, false
	}

	var seconds float64
	mult := 1.0
	for i := len(parts) - 1; i >= 0; i-- {
		v, err := strconv.ParseFloat(parts[i], 64)
		if err != nil {
			return 0, false
		}
		seconds += v * mult
		mult *= 60
	}
	return seconds, true
}
