package ffmpeg

import (
	"errors"
	"fmt"
	"strings"
)

// ErrLayoutUnsupported is reported when the combination of outputs on
// stdout cannot be framed: more than one output targets the pipe, or a
// rawvideo stream's pixel format is not in the frame-size table.
var ErrLayoutUnsupported = errors.New("ffmpeg: unsupported stdout layout")

// pixelFormatSize gives bytes per pixel as a num/den fraction for the
// pixel formats whose stdout frame size is well defined. Planar 4:2:0
// formats pack 3 bytes per 2 pixels. Exotic and hardware formats are
// deliberately absent; an unknown format rejects the layout rather
// than risk slicing frames at the wrong boundary.
var pixelFormatSize = map[string]struct{ num, den int }{
	"rgb24":    {3, 1},
	"bgr24":    {3, 1},
	"rgba":     {4, 1},
	"bgra":     {4, 1},
	"gray":     {1, 1},
	"gray16le": {2, 1},
	"yuv420p":  {3, 2},
	"yuv422p":  {2, 1},
	"yuv444p":  {3, 1},
	"nv12":     {3, 2},
}

// FrameSize returns the byte size of one w by h frame in the given pixel
// format, or false if the format is not in the supported table or the
// dimensions do not divide evenly into whole bytes.
func FrameSize(pixFmt string, width, height int) (int, bool) {
	size, ok := pixelFormatSize[pixFmt]
	if !ok || width <= 0 || height <= 0 {
		return 0, false
	}
	pixels := width * height
	if pixels*size.num%size.den != 0 {
		return 0, false
	}
	return pixels * size.num / size.den, true
}

// PlanMode describes how stdout will be consumed.
type PlanMode int

const (
	// PlanNone: no output targets stdout; nothing to read.
	PlanNone PlanMode = iota
	// PlanFrames: stdout is a repeating sequence of fixed-size frames.
	PlanFrames
	// PlanChunks: stdout is raw PCM or an undeterminable frame layout;
	// read in fixed-size chunks.
	PlanChunks
	// PlanOpaque: stdout carries an encoded bitstream (h264, matroska,
	// ...); the supervisor surrenders the pipe to the caller.
	PlanOpaque
)

func (m PlanMode) String() string {
	switch m {
	case PlanFrames:
		return "frames"
	case PlanChunks:
		return "chunks"
	case PlanOpaque:
		return "opaque"
	default:
		return "none"
	}
}

// frameSpec is the per-stream slice recipe of a frames-mode plan.
type frameSpec struct {
	outputIndex int
	streamIndex int
	width       int
	height      int
	pixFmt      string
	fps         float64
	size        int
}

// pcmChunkSize is the fixed read size for raw PCM on stdout. FFmpeg
// does not define a chunking unit for pcm_* muxers, so any consistent
// size works; 4096 bytes keeps chunks aligned for every sample format
// and channel count up to 8 bytes per sample frame.
const pcmChunkSize = 4096

// Plan is the stdout-layout decision derived from the parsed output
// declarations, fixed before the first stdout byte is interpreted.
type Plan struct {
	Mode PlanMode
	// ChunkSize is the read size in PlanChunks mode.
	ChunkSize int
	specs     []frameSpec
	// warning is surfaced as a Log event when a degraded mode was
	// chosen for a reason the caller likely did not intend.
	warning string
}

// resolveLayout inspects the outputs whose sink is the stdout pipe and
// decides how their bytes will be consumed. Exactly one output may
// target stdout; fixed-size rawvideo streams yield a frames plan,
// pcm_* audio a chunked plan, and everything else is opaque.
func resolveLayout(m *Metadata) (*Plan, error) {
	var stdoutOutputs []ParsedOutput
	for _, o := range m.Outputs {
		if o.IsStdout() {
			stdoutOutputs = append(stdoutOutputs, o)
		}
	}

	switch len(stdoutOutputs) {
	case 0:
		return &Plan{Mode: PlanNone}, nil
	case 1:
	default:
		return nil, fmt.Errorf("%w: %d outputs share stdout", ErrLayoutUnsupported, len(stdoutOutputs))
	}

	out := stdoutOutputs[0]
	streams := m.StreamsOf(out.Index)

	switch {
	case out.Format == "rawvideo":
		plan := &Plan{Mode: PlanFrames}
		for _, s := range streams {
			if s.Kind != KindVideo || s.Video == nil {
				continue
			}
			v := s.Video
			if v.Width <= 0 || v.Height <= 0 {
				// No usable dimensions; the bytes cannot be framed.
				return &Plan{Mode: PlanOpaque}, nil
			}
			size, ok := FrameSize(v.PixFmt, v.Width, v.Height)
			if !ok {
				return nil, fmt.Errorf("%w: cannot size frames for pixel format %q at %dx%d", ErrLayoutUnsupported, v.PixFmt, v.Width, v.Height)
			}
			plan.specs = append(plan.specs, frameSpec{
				outputIndex: out.Index,
				streamIndex: s.StreamIndex,
				width:       v.Width,
				height:      v.Height,
				pixFmt:      v.PixFmt,
				fps:         v.FPS,
				size:        size,
			})
		}
		if len(plan.specs) == 0 {
			return &Plan{Mode: PlanOpaque}, nil
		}
		// Interleaved rawvideo streams can only be demultiplexed when
		// their framerates agree.
		for _, spec := range plan.specs[1:] {
			if spec.fps != plan.specs[0].fps {
				return &Plan{
					Mode:      PlanChunks,
					ChunkSize: pcmChunkSize,
					warning:   "multiple rawvideo streams with differing framerates share stdout, reading in chunks",
				}, nil
			}
		}
		return plan, nil

	case strings.HasPrefix(out.Format, "pcm_") || out.Format == "s16le" || out.Format == "f32le":
		return &Plan{Mode: PlanChunks, ChunkSize: pcmChunkSize}, nil

	default:
		return &Plan{Mode: PlanOpaque}, nil
	}
}
