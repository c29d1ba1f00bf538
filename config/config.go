// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, AUDWAVE_RECORDING_SAMPLE_RATE
// sets recording.sample_rate.
const EnvPrefix = "AUDWAVE"

type Config struct {
	Recording Recording `mapstructure:"recording" yaml:"recording"`
	Waveform  Waveform  `mapstructure:"waveform" yaml:"waveform"`
	Decoder   Decoder   `mapstructure:"decoder" yaml:"decoder"`
	Storage   Storage   `mapstructure:"storage" yaml:"storage"`
	Log       Log       `mapstructure:"log" yaml:"log"`
}

type Recording struct {
	SampleRate       int           `mapstructure:"sample_rate" yaml:"sample_rate" validate:"oneof=8000 11025 16000 22050 32000 44100 48000"`
	Channels         int           `mapstructure:"channels" yaml:"channels" validate:"min=1,max=2"`
	Bitrate          int           `mapstructure:"bitrate" yaml:"bitrate" validate:"gte=0"`
	Format           string        `mapstructure:"format" yaml:"format" validate:"oneof=wav m4a"`
	Directory        string        `mapstructure:"directory" yaml:"directory" validate:"required"`
	ProgressInterval time.Duration `mapstructure:"progress_interval" yaml:"progress_interval" validate:"gt=0"`
}

type Waveform struct {
	ScreenWidthDp int     `mapstructure:"screen_width_dp" yaml:"screen_width_dp" validate:"gt=0"`
	Scale         float64 `mapstructure:"scale" yaml:"scale" validate:"gt=0,lte=255"`
}

type Decoder struct {
	Backend     string `mapstructure:"backend" yaml:"backend" validate:"oneof=native ffmpeg auto"`
	FFmpegPath  string `mapstructure:"ffmpeg_path" yaml:"ffmpeg_path"`
	FFprobePath string `mapstructure:"ffprobe_path" yaml:"ffprobe_path"`
}

type Storage struct {
	Driver string `mapstructure:"driver" yaml:"driver" validate:"oneof=sqlite badger"`
	DSN    string `mapstructure:"dsn" yaml:"dsn"`
}

type Log struct {
	Level string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Path  string `mapstructure:"path" yaml:"path"`
}

func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Audio", "audwave")
}

func setDefaults(v *viper.Viper) {
	dir := dataDir()

	v.SetDefault("recording.sample_rate", 44100)
	v.SetDefault("recording.channels", 1)
	v.SetDefault("recording.bitrate", 128000)
	v.SetDefault("recording.format", "wav")
	v.SetDefault("recording.directory", dir)
	v.SetDefault("recording.progress_interval", "40ms")

	v.SetDefault("waveform.screen_width_dp", 400)
	v.SetDefault("waveform.scale", 255)

	v.SetDefault("decoder.backend", "auto")
	v.SetDefault("decoder.ffmpeg_path", "ffmpeg")
	v.SetDefault("decoder.ffprobe_path", "ffprobe")

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.dsn", filepath.Join(dir, "records.db"))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "")
}

// Load reads path, or audwave.yaml from the working directory and the user
// config directory when path is empty, applies environment overrides and
// validates the result. A missing default file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	} else {
		v.SetConfigName("audwave")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "audwave"))
		}

		var notFound viper.ConfigFileNotFoundError
		if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}

// YAML renders c the way Load reads it.
func (c *Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return out, nil
}

// RecordingPath is where a recording called name lands, with the extension
// of the configured format.
func (c *Config) RecordingPath(name string) string {
	return filepath.Join(c.Recording.Directory, name+"."+c.Recording.Format)
}
