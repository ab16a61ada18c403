// Command ffstream drives an ffmpeg process and prints its event
// stream. With no arguments it runs a short testsrc demo; otherwise the
// first argument selects a mode:
//
//	ffstream run [ffmpeg args...]   spawn ffmpeg with the given args
//	ffstream probe <file>           print ffprobe metadata
//	ffstream version                print the ffmpeg version
//	ffstream download               install ffmpeg if missing
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"

	"thirdcoast.systems/ffstream/internal/config"
	"thirdcoast.systems/ffstream/pkg/download"
	"thirdcoast.systems/ffstream/pkg/ffmpeg"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conf, err := config.LoadConfig(ctx)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	setLogLevel(conf.LogLevel)

	mode := "demo"
	args := os.Args[1:]
	if len(args) > 0 {
		mode = args[0]
		args = args[1:]
	}

	switch mode {
	case "demo":
		err = runEvents(ctx, demoCommand(conf))
	case "run":
		cmd := ffmpeg.NewWithPath(conf.FFmpegPath).GracePeriod(conf.GracePeriod()).Arg(args...)
		err = runEvents(ctx, cmd)
	case "probe":
		if len(args) != 1 {
			err = fmt.Errorf("usage: ffstream probe <file>")
			break
		}
		err = runProbe(ctx, conf, args[0])
	case "version":
		var version string
		if version, err = ffmpeg.Version(ctx, conf.FFmpegPath); err == nil {
			fmt.Println(version)
		}
	case "download":
		err = runDownload(ctx, conf)
	default:
		err = fmt.Errorf("unknown mode %q", mode)
	}

	if err != nil {
		slog.Error("ffstream failed", "mode", mode, "error", err)
		os.Exit(1)
	}
}

// demoCommand decodes ten seconds of testsrc to raw frames on stdout.
func demoCommand(conf *config.Config) *ffmpeg.Command {
	return ffmpeg.NewWithPath(conf.FFmpegPath).
		GracePeriod(conf.GracePeriod()).
		Testsrc().
		Frames(250).
		Rawvideo()
}

// runEvents spawns the command and prints every event until Done.
func runEvents(ctx context.Context, cmd *ffmpeg.Command) error {
	child, err := cmd.Spawn()
	if err != nil {
		return err
	}
	defer child.Close()

	// A canceled context (Ctrl-C) terminates the child; the event
	// stream then winds down to Done on its own.
	go func() {
		<-ctx.Done()
		child.Close()
	}()

	frames := 0
	var frameBytes uint64
	it := child.Events()
	for {
		ev, ok := it.Next()
		if !ok {
			break
		}
		switch e := ev.(type) {
		case ffmpeg.ParsedInput:
			slog.Info("input", "index", e.Index, "format", e.Format, "from", e.From)
		case ffmpeg.ParsedOutput:
			slog.Info("output", "index", e.Index, "format", e.Format, "to", e.To, "stdout", e.IsStdout())
		case ffmpeg.ParsedInputStream:
			slog.Info("input stream", "spec", streamSummary(e.Stream))
		case ffmpeg.ParsedOutputStream:
			slog.Info("output stream", "spec", streamSummary(e.Stream))
		case ffmpeg.Progress:
			slog.Info("progress",
				"frame", e.Frame,
				"fps", e.FPS,
				"time", e.Time,
				"size", humanize.Bytes(e.SizeBytes),
				"speed", e.Speed)
		case ffmpeg.OutputFrame:
			frames++
			frameBytes += uint64(len(e.Data))
		case ffmpeg.OutputChunk:
			frameBytes += uint64(len(e.Data))
		case ffmpeg.Log:
			logLine(e)
		case ffmpeg.Error:
			slog.Error("ffmpeg error", "message", e.Message)
		case ffmpeg.Done:
			slog.Info("done",
				"success", e.Success,
				"exit_code", e.ExitCode,
				"frames", frames,
				"output", humanize.Bytes(frameBytes))
		}
	}
	return nil
}

// runDownload installs ffmpeg, honoring DOWNLOAD_DIR when set and
// otherwise placing binaries next to this executable.
func runDownload(ctx context.Context, conf *config.Config) error {
	if conf.DownloadDir == "" {
		return download.AutoDownload(ctx)
	}

	url, err := download.PackageURL()
	if err != nil {
		return err
	}
	archive, err := download.Package(ctx, url, conf.DownloadDir)
	if err != nil {
		return err
	}
	return download.Unpack(archive, conf.DownloadDir)
}

func runProbe(ctx context.Context, conf *config.Config, path string) error {
	result, err := ffmpeg.ProbeWithPath(ctx, conf.FFprobePath, path)
	if err != nil {
		return err
	}
	fmt.Printf("%s: format=%s duration=%.2fs size=%s bitrate=%s\n",
		path,
		result.FormatName,
		result.Duration,
		humanize.Bytes(uint64(result.Size)),
		humanize.SI(float64(result.Bitrate), "bit/s"))
	for _, s := range result.Streams {
		fmt.Printf("  stream #%d: %s\n", s.StreamIndex, streamSummary(s))
	}
	return nil
}

func streamSummary(s ffmpeg.Stream) string {
	switch {
	case s.Video != nil:
		return fmt.Sprintf("%s %s %dx%d @%.3g fps (%s)", s.Kind, s.Codec, s.Video.Width, s.Video.Height, s.Video.FPS, s.Video.PixFmt)
	case s.Audio != nil:
		return fmt.Sprintf("%s %s %d Hz %s %s", s.Kind, s.Codec, s.Audio.SampleRate, s.Audio.ChannelLayout, s.Audio.SampleFmt)
	default:
		return fmt.Sprintf("%s %s", s.Kind, s.Codec)
	}
}

func logLine(l ffmpeg.Log) {
	switch l.Level {
	case ffmpeg.LevelWarning:
		slog.Warn(l.Message)
	case ffmpeg.LevelError, ffmpeg.LevelFatal:
		slog.Error(l.Message)
	default:
		slog.Debug(l.Message)
	}
}

func setLogLevel(level string) {
	var lv slog.Level
	switch level {
	case "debug":
		lv = slog.LevelDebug
	case "warn":
		lv = slog.LevelWarn
	case "error":
		lv = slog.LevelError
	default:
		lv = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lv})))
}
