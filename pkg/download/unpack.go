package download

import (
	"archive/tar"
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ulikunitz/xz"
)

// binaryNames are the tool binaries moved out of an unpacked archive.
// ffmpeg is required; the others are moved when present (the static
// macOS archives ship only ffmpeg).
var binaryNames = []string{"ffmpeg", "ffprobe", "ffplay"}

// Unpack extracts an ffmpeg release archive and moves the binaries into
// destDir. The archive and temporary files are removed afterwards.
// Linux builds ship as .tar.xz, Windows and macOS as .zip.
func Unpack(archivePath, destDir string) error {
	tempDir := filepath.Join(destDir, "ffmpeg-unpack-"+uuid.NewString())
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return fmt.Errorf("download: creating temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	var err error
	switch {
	case strings.HasSuffix(archivePath, ".tar.xz"):
		err = extractTarXz(archivePath, tempDir)
	case strings.HasSuffix(archivePath, ".zip"):
		err = extractZip(archivePath, tempDir)
	default:
		return fmt.Errorf("download: unrecognized archive format: %s", archivePath)
	}
	if err != nil {
		return err
	}

	for _, name := range binaryNames {
		src := findBinary(tempDir, name)
		if src == "" {
			if name == "ffmpeg" {
				return fmt.Errorf("download: no ffmpeg binary found in %s", archivePath)
			}
			continue
		}
		dest := filepath.Join(destDir, filepath.Base(src))
		if err := os.Rename(src, dest); err != nil {
			return fmt.Errorf("download: moving %s: %w", name, err)
		}
		if err := os.Chmod(dest, 0o755); err != nil {
			return fmt.Errorf("download: chmod %s: %w", dest, err)
		}
	}

	return os.Remove(archivePath)
}

// findBinary locates a binary by name anywhere under root. Release
// archives nest binaries differently per platform (bin/ on Windows, a
// versioned folder on Linux, flat on macOS).
func findBinary(root, name string) string {
	var found string
	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		base := info.Name()
		if base == name || base == name+".exe" {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	return found
}

func extractTarXz(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("download: opening archive: %w", err)
	}
	defer f.Close()

	xzr, err := xz.NewReader(f)
	if err != nil {
		return fmt.Errorf("download: reading xz stream: %w", err)
	}

	tr := tar.NewReader(xzr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("download: reading tar: %w", err)
		}

		target, err := safeJoin(destDir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("download: extracting %s: %w", hdr.Name, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("download: extracting %s: %w", hdr.Name, err)
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode)&0o777)
			if err != nil {
				return fmt.Errorf("download: extracting %s: %w", hdr.Name, err)
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return fmt.Errorf("download: extracting %s: %w", hdr.Name, err)
			}
			out.Close()
		}
	}
}

func extractZip(archivePath, destDir string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("download: opening zip: %w", err)
	}
	defer zr.Close()

	for _, file := range zr.File {
		target, err := safeJoin(destDir, file.Name)
		if err != nil {
			return err
		}
		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("download: extracting %s: %w", file.Name, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("download: extracting %s: %w", file.Name, err)
		}
		in, err := file.Open()
		if err != nil {
			return fmt.Errorf("download: extracting %s: %w", file.Name, err)
		}
		out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, file.Mode()&0o777)
		if err != nil {
			in.Close()
			return fmt.Errorf("download: extracting %s: %w", file.Name, err)
		}
		_, err = io.Copy(out, in)
		in.Close()
		out.Close()
		if err != nil {
			return fmt.Errorf("download: extracting %s: %w", file.Name, err)
		}
	}
	return nil
}

// safeJoin joins an archive member path onto dir, rejecting traversal
// outside of it.
func safeJoin(dir, name string) (string, error) {
	target := filepath.Join(dir, name)
	if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("download: archive member escapes destination: %s", name)
	}
	return target, nil
}
