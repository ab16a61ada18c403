package ffmpeg

// Testsrc adds a procedural test pattern input, equivalent to
// `-f lavfi -i testsrc`.
func (c *Command) Testsrc() *Command {
	return c.Arg("-f", "lavfi", "-i", "testsrc")
}

// Sine adds a procedural sine tone input, equivalent to
// `-f lavfi -i sine=frequency=1000`.
func (c *Command) Sine() *Command {
	return c.Arg("-f", "lavfi", "-i", "sine=frequency=1000")
}

// Rawvideo directs decoded rgb24 frames to stdout, equivalent to
// `-f rawvideo -pix_fmt rgb24 -`.
func (c *Command) Rawvideo() *Command {
	return c.Format("rawvideo").PixFmt("rgb24").Output("-")
}

// NullOutput discards all output while still exercising the decode and
// encode path, equivalent to `-f null -`. The sink string is consumed
// by the null muxer, so stdout is not piped.
func (c *Command) NullOutput() *Command {
	c.lastFormat = ""
	return c.Arg("-f", "null", "-")
}
