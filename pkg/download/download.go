// Package download fetches and unpacks a static FFmpeg build for the
// current platform, placing the binaries next to the running
// executable. It exists so that library consumers get a working ffmpeg
// without a system package manager; when ffmpeg is already installed,
// AutoDownload is a no-op.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dustin/go-humanize"

	"thirdcoast.systems/ffstream/pkg/ffmpeg"
)

// ErrUnsupportedPlatform is returned when no published static build
// exists for the current GOOS/GOARCH combination.
var ErrUnsupportedPlatform = errors.New("download: no published ffmpeg build for this platform")

// ManifestURL returns the URL of the manifest describing the latest
// published FFmpeg release for the current platform.
func ManifestURL() (string, error) {
	if runtime.GOARCH != "amd64" {
		return "", ErrUnsupportedPlatform
	}
	switch runtime.GOOS {
	case "windows":
		return "https://www.gyan.dev/ffmpeg/builds/release-version", nil
	case "darwin":
		return "https://evermeet.cx/ffmpeg/info/ffmpeg/release", nil
	case "linux":
		return "https://johnvansickle.com/ffmpeg/release-readme.txt", nil
	default:
		return "", ErrUnsupportedPlatform
	}
}

// PackageURL returns the archive URL of the latest published FFmpeg
// release for the current platform.
func PackageURL() (string, error) {
	switch {
	case runtime.GOOS == "windows" && runtime.GOARCH == "amd64":
		return "https://www.gyan.dev/ffmpeg/builds/ffmpeg-release-essentials.zip", nil
	case runtime.GOOS == "linux" && runtime.GOARCH == "amd64":
		return "https://johnvansickle.com/ffmpeg/releases/ffmpeg-release-amd64-static.tar.xz", nil
	case runtime.GOOS == "darwin" && runtime.GOARCH == "amd64":
		return "https://evermeet.cx/ffmpeg/getrelease/zip", nil
	case runtime.GOOS == "darwin" && runtime.GOARCH == "arm64":
		return "https://www.osxexperts.net/ffmpeg7arm.zip", nil
	default:
		return "", ErrUnsupportedPlatform
	}
}

// InstallDir returns the directory binaries are placed in: the one
// containing the running executable.
func InstallDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("download: locating executable: %w", err)
	}
	return filepath.Dir(exe), nil
}

// LatestVersion fetches the platform manifest and parses the latest
// published version number out of it.
func LatestVersion(ctx context.Context) (string, error) {
	// The M1 build publishes no manifest; its archive URL tracks a
	// fixed major version.
	if runtime.GOOS == "darwin" && runtime.GOARCH == "arm64" {
		return "7.0", nil
	}

	url, err := ManifestURL()
	if err != nil {
		return "", err
	}

	body, err := fetch(ctx, url)
	if err != nil {
		return "", err
	}

	switch runtime.GOOS {
	case "windows":
		return strings.TrimSpace(body), nil
	case "darwin":
		if v := parseMacosVersion(body); v != "" {
			return v, nil
		}
		return "", errors.New("download: failed to parse version manifest (macos variant)")
	default:
		if v := parseLinuxVersion(body); v != "" {
			return v, nil
		}
		return "", errors.New("download: failed to parse version manifest (linux variant)")
	}
}

// parseMacosVersion pulls the version number from the evermeet.cx JSON
// manifest, e.g. `{"name":"ffmpeg","type":"release","version":"6.0",...}`.
func parseMacosVersion(manifest string) string {
	_, after, found := strings.Cut(manifest, `"version":`)
	if !found {
		return ""
	}
	parts := strings.SplitN(after, `"`, 3)
	if len(parts) < 3 {
		return ""
	}
	return parts[1]
}

// parseLinuxVersion pulls the version number from the johnvansickle.com
// readme, e.g. `build: ffmpeg-5.1.1-amd64-static.tar.xz\nversion: 5.1.1`.
func parseLinuxVersion(manifest string) string {
	_, after, found := strings.Cut(manifest, "version:")
	if !found {
		return ""
	}
	fields := strings.Fields(after)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Package downloads the archive at url into dir, logging the downloaded
// size via slog once the copy completes, and returns the path of the
// downloaded file.
func Package(ctx context.Context, url, dir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: fetching %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download: fetching %s: unexpected status %s", url, resp.Status)
	}

	archivePath := filepath.Join(dir, filepath.Base(url))
	out, err := os.Create(archivePath)
	if err != nil {
		return "", fmt.Errorf("download: creating %s: %w", archivePath, err)
	}
	defer out.Close()

	n, err := io.Copy(out, resp.Body)
	if err != nil {
		os.Remove(archivePath)
		return "", fmt.Errorf("download: writing %s: %w", archivePath, err)
	}
	slog.Info("downloaded ffmpeg archive",
		"url", url,
		"path", archivePath,
		"size", humanize.Bytes(uint64(n)))

	return archivePath, nil
}

// AutoDownload installs ffmpeg next to the running executable unless an
// installation is already reachable.
func AutoDownload(ctx context.Context) error {
	if ffmpeg.Installed() {
		return nil
	}

	url, err := PackageURL()
	if err != nil {
		return err
	}
	dir, err := InstallDir()
	if err != nil {
		return err
	}

	archivePath, err := Package(ctx, url, dir)
	if err != nil {
		return err
	}
	if err := Unpack(archivePath, dir); err != nil {
		return err
	}

	if !ffmpeg.Installed() && !ffmpeg.InstalledAt(filepath.Join(dir, ffmpegBinaryName())) {
		return errors.New("download: ffmpeg still not runnable after install")
	}
	return nil
}

func ffmpegBinaryName() string {
	if runtime.GOOS == "windows" {
		return "ffmpeg.exe"
	}
	return "ffmpeg"
}

func fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: fetching %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download: fetching %s: unexpected status %s", url, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("download: reading %s: %w", url, err)
	}
	return string(body), nil
}
