package ffmpeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProgressLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Progress
	}{
		{
			name: "encode in flight",
			line: "frame= 1996 fps=1984 q=-1.0 Lsize=     372kB time=00:01:19.72 bitrate=  38.2kbits/s speed=79.2x",
			want: Progress{
				Frame:       1996,
				FPS:         1984,
				Quantizer:   -1.0,
				SizeBytes:   372 * 1024,
				Time:        "00:01:19.72",
				Seconds:     79.72,
				BitrateKbps: 38.2,
				Speed:       79.2,
			},
		},
		{
			name: "ffmpeg 7 KiB units",
			line: "frame=    5 fps=0.0 q=-1.0 Lsize=      10KiB time=00:00:03.00 bitrate=  27.2kbits/s speed= 283x",
			want: Progress{
				Frame:       5,
				Quantizer:   -1.0,
				SizeBytes:   10 * 1024,
				Time:        "00:00:03.00",
				Seconds:     3,
				BitrateKbps: 27.2,
				Speed:       283,
			},
		},
		{
			name: "first report with N/A fields",
			line: "frame=    0 fps=0.0 q=-0.0 size=       0kB time=00:00:00.00 bitrate=N/A speed=N/A",
			want: Progress{Time: "00:00:00.00"},
		},
		{
			name: "audio only",
			line: "size=     123kB time=00:00:07.12 bitrate= 141.5kbits/s speed=14.1x",
			want: Progress{
				SizeBytes:   123 * 1024,
				Time:        "00:00:07.12",
				Seconds:     7.12,
				BitrateKbps: 141.5,
				Speed:       14.1,
			},
		},
		{
			name: "dup and drop counters",
			line: "frame=  100 fps= 50 q=28.0 size=     256kB time=00:00:04.00 bitrate= 524.3kbits/s dup=3 drop=7 speed=2.0x",
			want: Progress{
				Frame:       100,
				FPS:         50,
				Quantizer:   28,
				SizeBytes:   256 * 1024,
				Time:        "00:00:04.00",
				Seconds:     4,
				BitrateKbps: 524.3,
				Speed:       2,
				Dup:         3,
				Drop:        7,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseProgressLine(tt.line, tt.line)
			require.True(t, ok)
			got.Raw = ""
			assert.InDelta(t, tt.want.Seconds, got.Seconds, 1e-9)
			got.Seconds = tt.want.Seconds
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseProgressLineRejectsNonProgress(t *testing.T) {
	lines := []string{
		"",
		"Press [q] to stop, [?] for help",
		"Input #0, lavfi, from 'testsrc':",
		"frame dropped",
		"frame=10 but nothing else",
	}
	for _, line := range lines {
		_, ok := parseProgressLine(line, line)
		assert.False(t, ok, "line %q", line)
	}
}

func TestParseTimeSeconds(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"00:00:00.00", 0, true},
		{"5", 5, true},
		{"0.123", 0.123, true},
		{"1:00.0", 60, true},
		{"1:01.0", 61, true},
		{"1:01:01.123", 3661.123, true},
		{"N/A", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseTimeSeconds(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 1e-9, "input %q", tt.in)
		}
	}
}
