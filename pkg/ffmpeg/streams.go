package ffmpeg

import (
	"strconv"
	"strings"
)

// sampleFormats are the ffmpeg sample format names that can appear in
// an audio stream descriptor, used to tell the sample format token
// apart from the channel layout token.
var sampleFormats = map[string]bool{
	"u8": true, "s16": true, "s32": true, "s64": true, "flt": true, "dbl": true,
	"u8p": true, "s16p": true, "s32p": true, "s64p": true, "fltp": true, "dblp": true,
}

// parseStream parses a stream declaration line (with the `[level]`
// marker and leading whitespace already removed), e.g.
//
//	Stream #0:1(eng): Audio: opus, 48000 Hz, stereo, fltp (default)
//	Stream #1:5: Video: h264 (avc1 / 0x31637661), yuv444p(tv), 320x240 [SAR 1:1 DAR 4:3], q=2-31, 25 fps, 12800 tbn
//
// Descriptor fields after the codec are comma-separated but not in a
// fixed order; each token is recognized by shape and unknown tokens are
// skipped.
func parseStream(line string) (Stream, bool) {
	rest := strings.TrimPrefix(line, "Stream #")
	parts := splitTopLevel(rest)
	if len(parts) == 0 {
		return Stream{}, false
	}

	// First comma field: `0:1[0x3](eng): Video: h264 (avc1 / ...)`.
	head := strings.SplitN(parts[0], ":", 4)
	if len(head) < 3 {
		return Stream{}, false
	}

	parent, err := strconv.Atoi(strings.TrimSpace(head[0]))
	if err != nil {
		return Stream{}, false
	}

	index, language, ok := parseStreamID(head[1])
	if !ok {
		return Stream{}, false
	}

	s := Stream{
		ParentIndex: parent,
		StreamIndex: index,
		Language:    language,
	}

	switch strings.TrimSpace(head[2]) {
	case "Video":
		s.Kind = KindVideo
	case "Audio":
		s.Kind = KindAudio
	case "Subtitle":
		s.Kind = KindSubtitle
	case "Data":
		s.Kind = KindData
	case "Attachment":
		s.Kind = KindAttachment
	default:
		s.Kind = KindOther
	}

	if len(head) < 4 {
		return Stream{}, false
	}
	// Trim annotations like `(avc1 / 0x31637661)` or `(Main)`.
	s.Codec = firstToken(head[3])
	if s.Codec == "" {
		return Stream{}, false
	}

	switch s.Kind {
	case KindVideo:
		s.Video = parseVideoFields(parts[1:])
	case KindAudio:
		s.Audio = parseAudioFields(parts[1:])
	}
	return s, true
}

// parseStreamID handles the stream-index token, which may carry a
// hex ID in brackets and a language in parentheses: `2[0x3](eng)`.
func parseStreamID(tok string) (index int, language string, ok bool) {
	tok = strings.TrimSpace(tok)
	if open := strings.Index(tok, "("); open >= 0 {
		language = strings.TrimSuffix(tok[open+1:], ")")
		tok = tok[:open]
	}
	if open := strings.Index(tok, "["); open >= 0 {
		tok = tok[:open]
	}
	index, err := strconv.Atoi(strings.TrimSpace(tok))
	return index, language, err == nil
}

// firstToken returns the first space- or parenthesis-delimited token.
func firstToken(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " ("); i >= 0 {
		s = s[:i]
	}
	return s
}

// parseVideoFields scans the comma fields after the codec. The first
// unclaimed token is the pixel format; dimensions, framerate, aspect
// ratios and bitrate are recognized by shape wherever they appear.
func parseVideoFields(fields []string) *VideoData {
	v := &VideoData{}
	for i, field := range fields {
		trimmed := strings.TrimSpace(field)
		tok := firstToken(trimmed)

		switch {
		case strings.Contains(trimmed, " fps"):
			v.FPS, v.IndeterminateFPS = parseRate(tok)

		case strings.Contains(trimmed, " kb/s"):
			if n, err := strconv.Atoi(tok); err == nil {
				v.BitrateKbps = n
			}

		case parseDims(tok, v):
			// Aspect ratios ride along in the same field:
			// `320x240 [SAR 1:1 DAR 4:3]`.
			if open := strings.Index(trimmed, "[SAR "); open >= 0 {
				ratios := strings.Fields(strings.Trim(trimmed[open:], "[]"))
				for j := 0; j+1 < len(ratios); j += 2 {
					switch ratios[j] {
					case "SAR":
						v.SAR = ratios[j+1]
					case "DAR":
						v.DAR = ratios[j+1]
					}
				}
			}

		case i == 0:
			v.PixFmt = tok
		}
	}
	return v
}

// parseDims matches a `WxH` token, storing into v on success.
func parseDims(tok string, v *VideoData) bool {
	w, h, found := strings.Cut(tok, "x")
	if !found {
		return false
	}
	width, werr := strconv.Atoi(w)
	height, herr := strconv.Atoi(h)
	if werr != nil || herr != nil {
		return false
	}
	v.Width = width
	v.Height = height
	return true
}

// parseRate parses a framerate that may be a decimal (`29.97`) or a
// fraction (`30000/1001`). `0/0` reports an indeterminate framerate.
func parseRate(tok string) (fps float64, indeterminate bool) {
	if num, den, found := strings.Cut(tok, "/"); found {
		n, nerr := strconv.ParseFloat(num, 64)
		d, derr := strconv.ParseFloat(den, 64)
		if nerr != nil || derr != nil {
			return 0, false
		}
		if d == 0 {
			return 0, true
		}
		return n / d, false
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, false
	}
	return f, false
}

// parseAudioFields scans the comma fields after the codec: sample rate
// (`48000 Hz`), bitrate (`128 kb/s`), sample format (from the known
// set), and channel layout (the first token matching nothing else).
func parseAudioFields(fields []string) *AudioData {
	a := &AudioData{}
	for _, field := range fields {
		trimmed := strings.TrimSpace(field)
		tok := firstToken(trimmed)

		switch {
		case strings.Contains(trimmed, " Hz"):
			if n, err := strconv.Atoi(tok); err == nil {
				a.SampleRate = n
			}

		case strings.Contains(trimmed, " kb/s"):
			if n, err := strconv.Atoi(tok); err == nil {
				a.BitrateKbps = n
			}

		case sampleFormats[tok]:
			a.SampleFmt = tok

		case a.ChannelLayout == "" && tok != "":
			a.ChannelLayout = tok
		}
	}
	return a
}
