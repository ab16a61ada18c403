package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
)

// ProbeResult is media file metadata reported by ffprobe, mapped onto
// the same Stream model the log parser produces so that probed and
// parsed declarations are interchangeable.
type ProbeResult struct {
	FormatName string
	Duration   float64 // seconds
	Bitrate    int64   // bits per second
	Size       int64   // bytes

	Streams []Stream

	// RawJSON is the complete ffprobe output for fields not mapped.
	RawJSON map[string]any
}

// FirstVideo returns the first video stream, if any.
func (r *ProbeResult) FirstVideo() (Stream, bool) {
	for _, s := range r.Streams {
		if s.Kind == KindVideo {
			return s, true
		}
	}
	return Stream{}, false
}

// FirstAudio returns the first audio stream, if any.
func (r *ProbeResult) FirstAudio() (Stream, bool) {
	for _, s := range r.Streams {
		if s.Kind == KindAudio {
			return s, true
		}
	}
	return Stream{}, false
}

// ffprobeOutput matches ffprobe's JSON output structure.
type ffprobeOutput struct {
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
		Size       string `json:"size"`
		BitRate    string `json:"bit_rate"`
	} `json:"format"`
	Streams []struct {
		Index     int    `json:"index"`
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`

		Width       int    `json:"width"`
		Height      int    `json:"height"`
		RFrameRate  string `json:"r_frame_rate"`
		PixelFormat string `json:"pix_fmt"`

		SampleRate    string `json:"sample_rate"`
		SampleFmt     string `json:"sample_fmt"`
		Channels      int    `json:"channels"`
		ChannelLayout string `json:"channel_layout"`

		Tags struct {
			Language string `json:"language"`
		} `json:"tags"`
	} `json:"streams"`
}

// Probe runs ffprobe on a file or URL and returns its metadata.
func Probe(ctx context.Context, path string) (*ProbeResult, error) {
	return ProbeWithPath(ctx, "ffprobe", path)
}

// ProbeWithPath is Probe with an explicit ffprobe executable path.
func ProbeWithPath(ctx context.Context, ffprobePath, path string) (*ProbeResult, error) {
	args := []string{
		"-hide_banner",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	}

	cmd := exec.CommandContext(ctx, ffprobePath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe: %w: %s", err, stderr.String())
	}

	var output ffprobeOutput
	if err := json.Unmarshal(stdout.Bytes(), &output); err != nil {
		return nil, fmt.Errorf("ffprobe: failed to parse output: %w", err)
	}
	var rawMap map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &rawMap); err != nil {
		return nil, fmt.Errorf("ffprobe: failed to parse raw json: %w", err)
	}

	result := &ProbeResult{
		FormatName: output.Format.FormatName,
		RawJSON:    rawMap,
	}
	if output.Format.Duration != "" {
		result.Duration, _ = strconv.ParseFloat(output.Format.Duration, 64)
	}
	if output.Format.BitRate != "" {
		result.Bitrate, _ = strconv.ParseInt(output.Format.BitRate, 10, 64)
	}
	if output.Format.Size != "" {
		result.Size, _ = strconv.ParseInt(output.Format.Size, 10, 64)
	}

	for _, raw := range output.Streams {
		s := Stream{
			StreamIndex: raw.Index,
			Codec:       raw.CodecName,
			Language:    raw.Tags.Language,
		}
		switch raw.CodecType {
		case "video":
			s.Kind = KindVideo
			s.Video = &VideoData{
				PixFmt: raw.PixelFormat,
				Width:  raw.Width,
				Height: raw.Height,
			}
			s.Video.FPS, s.Video.IndeterminateFPS = parseRate(raw.RFrameRate)
		case "audio":
			s.Kind = KindAudio
			s.Audio = &AudioData{
				SampleFmt:     raw.SampleFmt,
				ChannelLayout: raw.ChannelLayout,
			}
			if raw.SampleRate != "" {
				s.Audio.SampleRate, _ = strconv.Atoi(raw.SampleRate)
			}
		case "subtitle":
			s.Kind = KindSubtitle
		case "data":
			s.Kind = KindData
		case "attachment":
			s.Kind = KindAttachment
		}
		result.Streams = append(result.Streams, s)
	}

	return result, nil
}

// ProbeDuration returns just the duration of a media file.
func ProbeDuration(ctx context.Context, path string) (float64, error) {
	result, err := Probe(ctx, path)
	if err != nil {
		return 0, err
	}
	return result.Duration, nil
}
