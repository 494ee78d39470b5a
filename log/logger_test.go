package log

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/authkit/log/mask"
	"github.com/kochabx/authkit/log/writer"
)

func TestNewWithLevel(t *testing.T) {
	logger := New(WithLevel(zerolog.WarnLevel))
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
}

func TestMaskingLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := &Logger{
		Logger: zerolog.New(mask.NewWriter(&buf, mask.NewCredentialHook())),
	}

	logger.Info().Str("authorization", "Bearer abc123").Msg("outbound request")

	out := buf.String()
	assert.NotContains(t, out, "abc123")
	assert.Contains(t, out, "Bearer ******")
}

func TestWithMaskInstallsBuiltins(t *testing.T) {
	logger := New(WithMask(nil))
	require.NotNil(t, logger.MaskHook())
	assert.Equal(t, len(mask.BuiltinRules()), logger.MaskHook().Len())
}

func TestNewFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewFile(FileConfig{
		Filepath:   dir,
		RotateMode: writer.RotateModeSize,
	})
	require.NoError(t, err)
	defer logger.Close()

	logger.Info().Msg("hello")

	matches, err := filepath.Glob(filepath.Join(dir, "authkit.log"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestGlobalLogger(t *testing.T) {
	old := G
	defer SetGlobalLogger(old)

	var buf bytes.Buffer
	SetGlobalLogger(&Logger{Logger: zerolog.New(&buf)})
	Info().Str("component", "refresh").Msg("coalesced")

	assert.Contains(t, buf.String(), "coalesced")
}
