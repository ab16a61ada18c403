package ffmpeg

import (
	"fmt"
	"strings"
)

// EventIter is the blocking consumer side of a child's merged event
// sequence. It is finite and non-restartable: after Done has been
// delivered, Next reports end of stream forever.
type EventIter struct {
	child *Child
	ch    <-chan Event
	done  bool
}

// Next blocks for the next event. The second return is false once the
// sequence has ended.
func (it *EventIter) Next() (Event, bool) {
	if it.done {
		return nil, false
	}
	ev, ok := <-it.ch
	if !ok {
		it.done = true
		return nil, false
	}
	if _, isDone := ev.(Done); isDone {
		// Done is terminal; the channel close follows immediately.
		it.done = true
	}
	return ev, true
}

// NextFrame advances to the next OutputFrame, discarding other events.
func (it *EventIter) NextFrame() (Frame, bool) {
	for {
		ev, ok := it.Next()
		if !ok {
			return Frame{}, false
		}
		if f, isFrame := ev.(OutputFrame); isFrame {
			return f.Frame, true
		}
	}
}

// NextChunk advances to the next OutputChunk, discarding other events.
func (it *EventIter) NextChunk() ([]byte, bool) {
	for {
		ev, ok := it.Next()
		if !ok {
			return nil, false
		}
		if chunk, isChunk := ev.(OutputChunk); isChunk {
			return chunk.Data, true
		}
	}
}

// NextProgress advances to the next Progress, discarding other events.
func (it *EventIter) NextProgress() (Progress, bool) {
	for {
		ev, ok := it.Next()
		if !ok {
			return Progress{}, false
		}
		if p, isProgress := ev.(Progress); isProgress {
			return p, true
		}
	}
}

// CollectMetadata advances the iterator until the input and output
// declarations are complete and returns the snapshot. Events consumed
// along the way are discarded, except that error text is aggregated
// into the returned error when the stream ends before the metadata
// completed (for example when ffmpeg rejects its arguments).
func (it *EventIter) CollectMetadata() (*Metadata, error) {
	var errText []string
	for {
		meta := it.child.Metadata()
		if meta.Completed() {
			return meta, nil
		}

		ev, ok := it.Next()
		if !ok {
			detail := strings.Join(errText, "; ")
			if detail == "" {
				detail = "no error output"
			}
			return nil, fmt.Errorf("ffmpeg: event stream ended before metadata was complete: %s", detail)
		}
		switch e := ev.(type) {
		case Error:
			errText = append(errText, e.Message)
		case Log:
			if e.Level == LevelError || e.Level == LevelFatal {
				errText = append(errText, e.Message)
			}
		}
	}
}
