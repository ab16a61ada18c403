package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// Installed reports whether the ffmpeg executable can be run.
func Installed() bool {
	return InstalledAt("ffmpeg")
}

// InstalledAt reports whether an ffmpeg executable at the given path
// can be run.
func InstalledAt(path string) bool {
	return exec.Command(path, "-version").Run() == nil
}

// Version runs `ffmpeg -version` and returns the parsed version
// identifier, e.g. "6.0" or "N-109875-geabc304d12". Note that ffmpeg
// prints version output on stdout, not stderr.
func Version(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, path, "-version")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("ffmpeg: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return "", &ExecError{Cmd: path, Args: []string{"-version"}, Cause: err}
	}

	version := ""
	parser := NewLogParser(stdout)
	for {
		ev, err := parser.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				cmd.Wait()
				return "", fmt.Errorf("ffmpeg: reading version output: %w", err)
			}
			break
		}
		if v, ok := ev.(ParsedVersion); ok {
			version = v.Version
		}
	}

	if err := cmd.Wait(); err != nil {
		return "", &ExecError{Cmd: path, Args: []string{"-version"}, ExitCode: cmd.ProcessState.ExitCode(), Cause: err}
	}
	if version == "" {
		return "", errors.New("ffmpeg: no version string in output")
	}
	return version, nil
}
