package ffmpeg

import (
	"strconv"
	"strings"
	"time"
)

// DefaultGracePeriod is how long Close waits between asking the child
// to terminate and killing it.
const DefaultGracePeriod = 5 * time.Second

// outputDesc records one output argument and whether it targets the
// stdout pipe, so Spawn knows which pipes to open before the process
// ever prints its own output sections.
type outputDesc struct {
	Sink   string
	Format string
	Stdout bool
}

// Command builds an ffmpeg invocation. Methods append arguments in
// call order and chain:
//
//	frames, err := ffmpeg.New().Testsrc().Rawvideo().Spawn()
//
// Spawn injects `-hide_banner` and `-loglevel level+info` when not
// already present; the level marker is what lets the log parser
// classify each stderr line.
type Command struct {
	path       string
	args       []string
	outputs    []outputDesc
	pipeStdin  bool
	lastFormat string
	grace      time.Duration
}

// New creates a Command resolving "ffmpeg" from PATH.
func New() *Command {
	return NewWithPath("ffmpeg")
}

// NewWithPath creates a Command for an explicit executable path.
func NewWithPath(path string) *Command {
	return &Command{path: path, grace: DefaultGracePeriod}
}

// Arg appends raw arguments, the escape hatch for anything without an
// alias. Output sinks added this way are not tracked for pipe setup,
// except that a literal "pipe:1" argument still opens the stdout pipe;
// use Output for anything else.
func (c *Command) Arg(args ...string) *Command {
	c.args = append(c.args, args...)
	return c
}

// Format is the `-f` flag, forcing an input or output format.
func (c *Command) Format(format string) *Command {
	c.lastFormat = format
	return c.Arg("-f", format)
}

// Input is the `-i` flag. Use "-" or "pipe:0" to read from stdin; doing
// so implies PipeStdin.
func (c *Command) Input(pathOrURL string) *Command {
	if pathOrURL == "-" || pathOrURL == "pipe:" || pathOrURL == "pipe:0" {
		c.pipeStdin = true
	}
	return c.Arg("-i", pathOrURL)
}

// Output appends an output sink. "-", "pipe:" and "pipe:1" target
// stdout and cause Spawn to open the stdout pipe. The most recent
// Format call is recorded as this output's container.
func (c *Command) Output(sink string) *Command {
	stdout := sink == "-" || sink == "pipe:" || sink == "pipe:1"
	c.outputs = append(c.outputs, outputDesc{Sink: sink, Format: c.lastFormat, Stdout: stdout})
	c.lastFormat = ""
	return c.Arg(sink)
}

// PipeStdin asks Spawn to connect a pipe to the child's stdin, enabling
// writes from the caller and the graceful `q` shutdown protocol.
func (c *Command) PipeStdin() *Command {
	c.pipeStdin = true
	return c
}

// GracePeriod overrides the termination grace period used by Close.
func (c *Command) GracePeriod(d time.Duration) *Command {
	c.grace = d
	return c
}

// Overwrite is `-y`: overwrite output files without asking.
func (c *Command) Overwrite() *Command { return c.Arg("-y") }

// VideoCodec is `-c:v`.
func (c *Command) VideoCodec(codec string) *Command { return c.Arg("-c:v", codec) }

// AudioCodec is `-c:a`.
func (c *Command) AudioCodec(codec string) *Command { return c.Arg("-c:a", codec) }

// PixFmt is `-pix_fmt`.
func (c *Command) PixFmt(format string) *Command { return c.Arg("-pix_fmt", format) }

// Size is `-s`, the frame size.
func (c *Command) Size(width, height int) *Command {
	return c.Arg("-s", strconv.Itoa(width)+"x"+strconv.Itoa(height))
}

// Rate is `-r`, the frame rate.
func (c *Command) Rate(fps float64) *Command {
	return c.Arg("-r", strconv.FormatFloat(fps, 'f', -1, 64))
}

// Frames is `-frames:v`: stop writing after n video frames.
func (c *Command) Frames(n int) *Command { return c.Arg("-frames:v", strconv.Itoa(n)) }

// Duration is `-t`.
func (c *Command) Duration(d time.Duration) *Command {
	return c.Arg("-t", strconv.FormatFloat(d.Seconds(), 'f', 3, 64))
}

// Seek is `-ss`.
func (c *Command) Seek(d time.Duration) *Command {
	return c.Arg("-ss", strconv.FormatFloat(d.Seconds(), 'f', 3, 64))
}

// NoVideo is `-vn`.
func (c *Command) NoVideo() *Command { return c.Arg("-vn") }

// NoAudio is `-an`.
func (c *Command) NoAudio() *Command { return c.Arg("-an") }

// Filter is `-filter`, a single-stream filtergraph.
func (c *Command) Filter(filtergraph string) *Command { return c.Arg("-filter", filtergraph) }

// Map is `-map`, selecting streams for the next output.
func (c *Command) Map(spec string) *Command { return c.Arg("-map", spec) }

// Preset is `-preset` (ultrafast, fast, medium, ...).
func (c *Command) Preset(name string) *Command { return c.Arg("-preset", name) }

// CRF is `-crf`, the constant rate factor.
func (c *Command) CRF(value int) *Command { return c.Arg("-crf", strconv.Itoa(value)) }

// Path returns the executable that will be spawned.
func (c *Command) Path() string { return c.path }

// BuildArgs returns the complete argument list, injecting
// `-hide_banner` and `-loglevel level+info` when the caller has not
// set them. Overriding `-loglevel` manually still works but loses the
// level tags the parser uses to classify lines.
func (c *Command) BuildArgs() []string {
	var prefix []string
	if !c.hasFlag("-hide_banner") {
		prefix = append(prefix, "-hide_banner")
	}
	if !c.hasFlag("-loglevel") {
		prefix = append(prefix, "-loglevel", "level+info")
	}
	return append(prefix, c.args...)
}

func (c *Command) hasFlag(flag string) bool {
	for _, a := range c.args {
		if a == flag {
			return true
		}
	}
	return false
}

// stdoutBearing reports whether any declared output targets stdout.
func (c *Command) stdoutBearing() bool {
	for _, o := range c.outputs {
		if o.Stdout {
			return true
		}
	}
	// Tolerate sinks added through Arg.
	for _, a := range c.args {
		if a == "pipe:1" {
			return true
		}
	}
	return false
}

// String renders the command for logs; copy-pasteable into a shell for
// everything but exotic quoting.
func (c *Command) String() string {
	return c.path + " " + strings.Join(c.BuildArgs(), " ")
}
