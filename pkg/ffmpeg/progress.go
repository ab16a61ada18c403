package ffmpeg

import (
	"strconv"
	"strings"
)

// parseProgressLine recognizes the periodic stats line ffmpeg prints on
// stderr, e.g.
//
//	frame= 1996 fps=1984 q=-1.0 Lsize=     372kB time=00:01:19.72 bitrate=  38.2kbits/s speed=79.2x
//
// Audio-only encodes omit frame/fps/q and begin with `size=`. Values of
// `N/A` parse as zero. Fields can appear in any order; unknown fields
// are ignored.
func parseProgressLine(line, raw string) (Progress, bool) {
	isVideo := strings.HasPrefix(line, "frame=") && strings.Contains(line, "fps=")
	isAudio := strings.HasPrefix(line, "size=") || strings.HasPrefix(line, "Lsize=")
	if !isVideo && !isAudio {
		return Progress{}, false
	}
	if !strings.Contains(line, "time=") || !strings.Contains(line, "bitrate=") {
		return Progress{}, false
	}

	p := Progress{Raw: raw}
	p.Frame = progressUint(line, "frame=")
	p.FPS = progressFloat(line, "fps=")
	p.Quantizer = progressFloat(line, "q=")
	p.Dup = progressUint(line, "dup=")
	p.Drop = progressUint(line, "drop=")

	// `size=` also matches `Lsize=`, which ffmpeg uses for the final
	// stats line. FFmpeg 7.0 switched the unit suffix from kB to KiB.
	if v, ok := progressValue(line, "size="); ok {
		v = strings.TrimSuffix(strings.TrimSuffix(v, "KiB"), "kB")
		if kb, err := strconv.ParseUint(v, 10, 64); err == nil {
			p.SizeBytes = kb * 1024
		}
	}

	if v, ok := progressValue(line, "time="); ok {
		p.Time = v
		if secs, ok := parseTimeSeconds(v); ok && secs > 0 {
			p.Seconds = secs
		}
	}

	if v, ok := progressValue(line, "bitrate="); ok {
		v = strings.TrimSuffix(v, "kbits/s")
		p.BitrateKbps, _ = strconv.ParseFloat(v, 64)
	}

	if v, ok := progressValue(line, "speed="); ok {
		v = strings.TrimSuffix(v, "x")
		p.Speed, _ = strconv.ParseFloat(v, 64)
	}

	return p, true
}

// progressValue extracts the whitespace-delimited value following key.
// FFmpeg right-aligns values, so the `=` may be followed by spaces.
func progressValue(line, key string) (string, bool) {
	_, after, found := strings.Cut(line, key)
	if !found {
		return "", false
	}
	fields := strings.Fields(after)
	if len(fields) == 0 {
		return "", false
	}
	return fields[0], true
}

func progressUint(line, key string) uint64 {
	v, ok := progressValue(line, key)
	if !ok {
		return 0
	}
	n, _ := strconv.ParseUint(v, 10, 64)
	return n
}

func progressFloat(line, key string) float64 {
	v, ok := progressValue(line, key)
	if !ok {
		return 0
	}
	n, _ := strconv.ParseFloat(v, 64)
	return n
}
