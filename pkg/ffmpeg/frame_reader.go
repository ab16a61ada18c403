package ffmpeg

import (
	"errors"
	"fmt"
	"io"
)

// readFrames slices stdout into fixed-size frames according to the
// plan, emitting one OutputFrame per read. When several streams share
// the pipe their frames are interleaved round-robin, which holds
// because the plan guarantees matching framerates. A short read at EOF
// is dropped and surfaced as a warning; any other read error stops the
// loop with an Error event.
func readFrames(r io.Reader, plan *Plan, emit func(Event)) {
	var frameNum uint64
	for i := 0; ; i = (i + 1) % len(plan.specs) {
		spec := plan.specs[i]
		buf := make([]byte, spec.size)

		n, err := io.ReadFull(r, buf)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return
		case errors.Is(err, io.ErrUnexpectedEOF):
			if n > 0 {
				emit(Log{Level: LevelWarning, Message: fmt.Sprintf("truncated final frame of %d bytes", n)})
			}
			return
		default:
			emit(Error{Message: fmt.Sprintf("stdout read failed: %v", err)})
			return
		}

		streamFrame := frameNum / uint64(len(plan.specs))
		frame := Frame{
			OutputIndex: spec.outputIndex,
			StreamIndex: spec.streamIndex,
			Width:       spec.width,
			Height:      spec.height,
			PixFmt:      spec.pixFmt,
			FrameNum:    streamFrame,
			Data:        buf,
		}
		if spec.fps > 0 {
			frame.Timestamp = float64(streamFrame) / spec.fps
		}
		frameNum++
		emit(OutputFrame{Frame: frame})
	}
}

// readChunks reads stdout in fixed-size blocks, used for raw PCM and
// for degraded layouts where frame boundaries are unknown. Every chunk
// is exactly size bytes except a shorter final one at EOF.
func readChunks(r io.Reader, size int, emit func(Event)) {
	for {
		buf := make([]byte, size)
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			emit(OutputChunk{Data: buf[:n]})
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return
		default:
			emit(Error{Message: fmt.Sprintf("stdout read failed: %v", err)})
			return
		}
	}
}
