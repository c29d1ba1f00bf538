// SPDX-License-Identifier: EPL-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "audwave.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 44100, cfg.Recording.SampleRate)
	assert.Equal(t, 1, cfg.Recording.Channels)
	assert.Equal(t, "wav", cfg.Recording.Format)
	assert.Equal(t, 40*time.Millisecond, cfg.Recording.ProgressInterval)
	assert.Equal(t, 400, cfg.Waveform.ScreenWidthDp)
	assert.InDelta(t, 255.0, cfg.Waveform.Scale, 0)
	assert.Equal(t, "auto", cfg.Decoder.Backend)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
recording:
  sample_rate: 16000
  channels: 2
  format: m4a
  directory: /tmp/rec
  progress_interval: 100ms
waveform:
  screen_width_dp: 720
decoder:
  backend: ffmpeg
storage:
  driver: badger
  dsn: /tmp/rec/db
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 16000, cfg.Recording.SampleRate)
	assert.Equal(t, 2, cfg.Recording.Channels)
	assert.Equal(t, 100*time.Millisecond, cfg.Recording.ProgressInterval)
	assert.Equal(t, 720, cfg.Waveform.ScreenWidthDp)
	assert.Equal(t, "ffmpeg", cfg.Decoder.Backend)
	assert.Equal(t, "badger", cfg.Storage.Driver)
	assert.Equal(t, "/tmp/rec/clip.m4a", cfg.RecordingPath("clip"))

	// untouched keys keep their defaults
	assert.Equal(t, 128000, cfg.Recording.Bitrate)
	assert.Equal(t, "ffprobe", cfg.Decoder.FFprobePath)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("AUDWAVE_RECORDING_SAMPLE_RATE", "48000")
	t.Setenv("AUDWAVE_LOG_LEVEL", "warn")

	cfg, err := Load(writeConfig(t, "recording:\n  sample_rate: 8000\n"))
	require.NoError(t, err)

	assert.Equal(t, 48000, cfg.Recording.SampleRate)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"format", "recording:\n  format: mp3\n"},
		{"channels", "recording:\n  channels: 3\n"},
		{"sample rate", "recording:\n  sample_rate: 12345\n"},
		{"backend", "decoder:\n  backend: gstreamer\n"},
		{"driver", "storage:\n  driver: postgres\n"},
		{"scale", "waveform:\n  scale: 300\n"},
		{"interval", "recording:\n  progress_interval: 0s\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Load(writeConfig(t, tt.body))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestConfig_YAMLRoundTrip(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, "recording:\n  directory: /srv/audio\n  progress_interval: 80ms\n"))
	require.NoError(t, err)

	out, err := cfg.YAML()
	require.NoError(t, err)

	var raw map[string]map[string]any
	require.NoError(t, yaml.Unmarshal(out, &raw))
	assert.Equal(t, "/srv/audio", raw["recording"]["directory"])
	assert.Equal(t, "80ms", raw["recording"]["progress_interval"])

	again, err := Load(writeConfig(t, string(out)))
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}
