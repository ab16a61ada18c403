package ffmpeg

import "fmt"

// Metadata assembles the input/output/stream declarations parsed from
// stderr into one snapshot. It is complete once every stream mapping
// line has been matched by an output stream declaration: each mapping
// corresponds to exactly one output stream, so counting them tells us
// when the output sections have been fully printed.
type Metadata struct {
	Inputs        []ParsedInput
	Outputs       []ParsedOutput
	InputStreams  []Stream
	OutputStreams []Stream
	Mappings      []string

	// Per-section metadata maps, keyed by input/output index.
	InputMeta  map[int]map[string]string
	OutputMeta map[int]map[string]string

	expectedOutputStreams int
	completed             bool
}

func newMetadata() *Metadata {
	return &Metadata{
		InputMeta:  make(map[int]map[string]string),
		OutputMeta: make(map[int]map[string]string),
	}
}

// Completed reports whether all declarations have been gathered.
func (m *Metadata) Completed() bool { return m.completed }

// Duration returns the duration in seconds of the first input, or
// false when no input declared one.
func (m *Metadata) Duration() (float64, bool) {
	if len(m.Inputs) == 0 || m.Inputs[0].Duration < 0 {
		return 0, false
	}
	return m.Inputs[0].Duration, true
}

// StreamsOf returns the output streams declared for one output index.
func (m *Metadata) StreamsOf(output int) []Stream {
	var streams []Stream
	for _, s := range m.OutputStreams {
		if s.ParentIndex == output {
			streams = append(streams, s)
		}
	}
	return streams
}

// handle folds one parsed event into the snapshot. It returns an error
// only for structural impossibilities, such as a stream or duration
// declared for an input that was never announced; unknown events are
// ignored.
func (m *Metadata) handle(ev Event) error {
	switch e := ev.(type) {
	case ParsedInput:
		if e.Index != len(m.Inputs) {
			return fmt.Errorf("input #%d declared out of order (have %d inputs)", e.Index, len(m.Inputs))
		}
		m.Inputs = append(m.Inputs, e)

	case ParsedOutput:
		if e.Index != len(m.Outputs) {
			return fmt.Errorf("output #%d declared out of order (have %d outputs)", e.Index, len(m.Outputs))
		}
		m.Outputs = append(m.Outputs, e)

	case ParsedDuration:
		if e.InputIndex >= len(m.Inputs) {
			return fmt.Errorf("duration for nonexistent input #%d", e.InputIndex)
		}
		m.Inputs[e.InputIndex].Duration = e.Seconds

	case ParsedStreamMapping:
		m.Mappings = append(m.Mappings, e.Raw)
		m.expectedOutputStreams++

	case ParsedInputStream:
		if e.ParentIndex >= len(m.Inputs) {
			return fmt.Errorf("stream declared for nonexistent input #%d", e.ParentIndex)
		}
		m.InputStreams = append(m.InputStreams, e.Stream)

	case ParsedOutputStream:
		if e.ParentIndex >= len(m.Outputs) {
			return fmt.Errorf("stream declared for nonexistent output #%d", e.ParentIndex)
		}
		m.OutputStreams = append(m.OutputStreams, e.Stream)

	case sectionMeta:
		target := m.InputMeta
		if e.output {
			target = m.OutputMeta
		}
		if target[e.index] == nil {
			target[e.index] = make(map[string]string)
		}
		target[e.index][e.key] = e.value
	}

	if m.expectedOutputStreams > 0 && len(m.OutputStreams) == m.expectedOutputStreams {
		m.completed = true
	}
	return nil
}

// clone returns a copy safe to hand to another goroutine. Slices are
// copied; Stream payload pointers are shared but never mutated after
// parsing.
func (m *Metadata) clone() *Metadata {
	out := &Metadata{
		Inputs:                append([]ParsedInput(nil), m.Inputs...),
		Outputs:               append([]ParsedOutput(nil), m.Outputs...),
		InputStreams:          append([]Stream(nil), m.InputStreams...),
		OutputStreams:         append([]Stream(nil), m.OutputStreams...),
		Mappings:              append([]string(nil), m.Mappings...),
		InputMeta:             make(map[int]map[string]string, len(m.InputMeta)),
		OutputMeta:            make(map[int]map[string]string, len(m.OutputMeta)),
		expectedOutputStreams: m.expectedOutputStreams,
		completed:             m.completed,
	}
	for i, kv := range m.InputMeta {
		inner := make(map[string]string, len(kv))
		for k, v := range kv {
			inner[k] = v
		}
		out.InputMeta[i] = inner
	}
	for i, kv := range m.OutputMeta {
		inner := make(map[string]string, len(kv))
		for k, v := range kv {
			inner[k] = v
		}
		out.OutputMeta[i] = inner
	}
	return out
}
