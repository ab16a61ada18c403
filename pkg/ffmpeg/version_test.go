package ffmpeg

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	// -version output lands on stdout, not stderr.
	path := fakeFfmpeg(t, `printf '%s\n' "ffmpeg version 6.1.1 Copyright (c) 2000-2024 the FFmpeg developers"
printf '%s\n' "built with gcc 13 (GCC)"
exit 0
`)

	version, err := Version(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "6.1.1", version)
}

func TestVersionMissingBanner(t *testing.T) {
	path := fakeFfmpeg(t, `printf '%s\n' "not ffmpeg at all"
exit 0
`)

	_, err := Version(context.Background(), path)
	assert.Error(t, err)
}

func TestVersionNonZeroExit(t *testing.T) {
	path := fakeFfmpeg(t, "exit 2\n")

	_, err := Version(context.Background(), path)
	require.Error(t, err)
	var execErr *ExecError
	assert.ErrorAs(t, err, &execErr)
}

func TestInstalledAt(t *testing.T) {
	assert.True(t, InstalledAt(fakeFfmpeg(t, "exit 0\n")))
	assert.False(t, InstalledAt(fakeFfmpeg(t, "exit 1\n")))
	assert.False(t, InstalledAt("/nonexistent/ffmpeg"))
}
