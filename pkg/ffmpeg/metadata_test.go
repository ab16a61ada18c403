package ffmpeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataAccumulation(t *testing.T) {
	m := newMetadata()

	events := []Event{
		ParsedVersion{Version: "6.0"},
		ParsedInput{Index: 0, Format: "lavfi", From: "testsrc", Duration: -1},
		ParsedDuration{InputIndex: 0, Seconds: 10},
		ParsedInputStream{Stream: Stream{ParentIndex: 0, Kind: KindVideo}},
		ParsedStreamMapping{Raw: "Stream #0:0 -> #0:0"},
		ParsedOutput{Index: 0, Format: "rawvideo", To: "pipe:"},
		sectionMeta{output: true, index: 0, key: "encoder", value: "Lavf60.2.100"},
	}
	for _, ev := range events {
		require.NoError(t, m.handle(ev))
		assert.False(t, m.Completed())
	}

	// The final output stream matches the single mapping entry and
	// completes the metadata.
	stream := Stream{ParentIndex: 0, StreamIndex: 0, Kind: KindVideo, Video: &VideoData{PixFmt: "rgb24", Width: 320, Height: 240, FPS: 25}}
	require.NoError(t, m.handle(ParsedOutputStream{Stream: stream}))
	assert.True(t, m.Completed())

	require.Len(t, m.Inputs, 1)
	dur, ok := m.Duration()
	require.True(t, ok)
	assert.Equal(t, 10.0, dur)

	require.Len(t, m.Outputs, 1)
	require.Len(t, m.OutputStreams, 1)
	assert.Equal(t, "Lavf60.2.100", m.OutputMeta[0]["encoder"])
	assert.Len(t, m.StreamsOf(0), 1)
}

func TestMetadataStructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
	}{
		{"stream for nonexistent input", ParsedInputStream{Stream: Stream{ParentIndex: 3}}},
		{"stream for nonexistent output", ParsedOutputStream{Stream: Stream{ParentIndex: 0}}},
		{"duration for nonexistent input", ParsedDuration{InputIndex: 1}},
		{"input declared out of order", ParsedInput{Index: 2}},
		{"output declared out of order", ParsedOutput{Index: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMetadata()
			assert.Error(t, m.handle(tt.ev))
		})
	}
}

func TestMetadataNoDuration(t *testing.T) {
	m := newMetadata()
	require.NoError(t, m.handle(ParsedInput{Index: 0, Duration: -1}))
	_, ok := m.Duration()
	assert.False(t, ok)
}

func TestMetadataClone(t *testing.T) {
	m := newMetadata()
	require.NoError(t, m.handle(ParsedInput{Index: 0, Duration: -1}))
	require.NoError(t, m.handle(sectionMeta{index: 0, key: "title", value: "a"}))

	snapshot := m.clone()
	require.NoError(t, m.handle(ParsedDuration{InputIndex: 0, Seconds: 4}))
	m.InputMeta[0]["title"] = "b"

	assert.Equal(t, -1.0, snapshot.Inputs[0].Duration)
	assert.Equal(t, "a", snapshot.InputMeta[0]["title"])
}
