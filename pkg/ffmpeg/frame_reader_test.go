package ffmpeg

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func framesPlan(pixFmt string, w, h int, fps float64) *Plan {
	size, _ := FrameSize(pixFmt, w, h)
	return &Plan{
		Mode: PlanFrames,
		specs: []frameSpec{{
			outputIndex: 0,
			streamIndex: 0,
			width:       w,
			height:      h,
			pixFmt:      pixFmt,
			fps:         fps,
			size:        size,
		}},
	}
}

func collectFrameEvents(r io.Reader, plan *Plan) []Event {
	var events []Event
	readFrames(r, plan, func(ev Event) { events = append(events, ev) })
	return events
}

func TestReadFrames(t *testing.T) {
	plan := framesPlan("rgb24", 4, 4, 25)
	const frameSize = 4 * 4 * 3

	data := make([]byte, 10*frameSize)
	for i := range data {
		data[i] = byte(i)
	}

	events := collectFrameEvents(bytes.NewReader(data), plan)
	require.Len(t, events, 10)
	for i, ev := range events {
		frame, ok := ev.(OutputFrame)
		require.True(t, ok, "got %T", ev)
		assert.Equal(t, frameSize, len(frame.Data))
		assert.Equal(t, uint64(i), frame.FrameNum)
		assert.InDelta(t, float64(i)/25.0, frame.Timestamp, 1e-9)
		assert.Equal(t, "rgb24", frame.PixFmt)
		assert.Equal(t, 4, frame.Width)
		assert.Equal(t, 4, frame.Height)
		assert.Equal(t, data[i*frameSize:(i+1)*frameSize], frame.Data)
	}
}

func TestReadFramesZeroFPSTimestamps(t *testing.T) {
	plan := framesPlan("gray", 2, 2, 0)
	events := collectFrameEvents(bytes.NewReader(make([]byte, 12)), plan)
	require.Len(t, events, 3)
	for _, ev := range events {
		frame := ev.(OutputFrame)
		assert.Zero(t, frame.Timestamp)
	}
}

func TestReadFramesTruncatedFinalFrame(t *testing.T) {
	plan := framesPlan("rgb24", 4, 4, 25)
	const frameSize = 4 * 4 * 3

	// Two full frames and 5 trailing bytes.
	events := collectFrameEvents(bytes.NewReader(make([]byte, 2*frameSize+5)), plan)
	require.Len(t, events, 3)
	_, ok := events[0].(OutputFrame)
	assert.True(t, ok)
	_, ok = events[1].(OutputFrame)
	assert.True(t, ok)

	warning, ok := events[2].(Log)
	require.True(t, ok, "got %T", events[2])
	assert.Equal(t, LevelWarning, warning.Level)
	assert.Contains(t, warning.Message, "truncated final frame of 5 bytes")
}

func TestReadFramesInterleaved(t *testing.T) {
	size0, _ := FrameSize("gray", 2, 2)
	size1, _ := FrameSize("gray", 4, 2)
	plan := &Plan{
		Mode: PlanFrames,
		specs: []frameSpec{
			{outputIndex: 0, streamIndex: 0, width: 2, height: 2, pixFmt: "gray", fps: 10, size: size0},
			{outputIndex: 0, streamIndex: 1, width: 4, height: 2, pixFmt: "gray", fps: 10, size: size1},
		},
	}

	// Three rounds of (4 + 8) bytes.
	events := collectFrameEvents(bytes.NewReader(make([]byte, 3*(size0+size1))), plan)
	require.Len(t, events, 6)
	for i, ev := range events {
		frame := ev.(OutputFrame)
		assert.Equal(t, i%2, frame.StreamIndex)
		assert.Equal(t, uint64(i/2), frame.FrameNum)
	}
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestReadFramesErrorStops(t *testing.T) {
	plan := framesPlan("rgb24", 4, 4, 25)
	events := collectFrameEvents(failingReader{err: io.ErrClosedPipe}, plan)
	require.Len(t, events, 1)
	errEv, ok := events[0].(Error)
	require.True(t, ok, "got %T", events[0])
	assert.Contains(t, errEv.Message, "stdout read failed")
}

func TestReadChunks(t *testing.T) {
	var events []Event
	readChunks(bytes.NewReader(make([]byte, 2*pcmChunkSize+100)), pcmChunkSize, func(ev Event) {
		events = append(events, ev)
	})

	require.Len(t, events, 3)
	total := 0
	for _, ev := range events {
		chunk, ok := ev.(OutputChunk)
		require.True(t, ok, "got %T", ev)
		assert.LessOrEqual(t, len(chunk.Data), pcmChunkSize)
		total += len(chunk.Data)
	}
	assert.Equal(t, 2*pcmChunkSize+100, total)
}
