package download

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMacosVersion(t *testing.T) {
	manifest := `{"name":"ffmpeg","type":"release","version":"6.0","size":79936812}`
	assert.Equal(t, "6.0", parseMacosVersion(manifest))
	assert.Empty(t, parseMacosVersion("{}"))
}

func TestParseLinuxVersion(t *testing.T) {
	manifest := "build: ffmpeg-5.1.1-amd64-static.tar.xz\nversion: 5.1.1\n\ngcc: 8.3.0"
	assert.Equal(t, "5.1.1", parseLinuxVersion(manifest))
	assert.Empty(t, parseLinuxVersion("no version here"))
}

func TestPackageURL(t *testing.T) {
	url, err := PackageURL()
	if err != nil {
		require.ErrorIs(t, err, ErrUnsupportedPlatform)
		return
	}
	assert.NotEmpty(t, url)
}
