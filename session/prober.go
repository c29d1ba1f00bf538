// SPDX-License-Identifier: EPL-2.0

package session

import (
	"context"
	"errors"
	"time"

	"github.com/ik5/audwave/audio"
	"github.com/ik5/audwave/decoder"
)

// DurationProber measures a finished recording from the file itself.
type DurationProber func(ctx context.Context, path string) (time.Duration, error)

// RegistryProber reads the duration from the container header through reg.
func RegistryProber(reg *audio.Registry) DurationProber {
	return func(_ context.Context, path string) (time.Duration, error) {
		info, err := audio.ProbeFile(reg, path)
		if err != nil {
			return 0, err
		}
		return info.Duration, nil
	}
}

// FFprobeProber asks ffprobe for the duration of the first audio track.
func FFprobeProber(ffprobe string) DurationProber {
	return func(ctx context.Context, path string) (time.Duration, error) {
		ex, err := decoder.NewProbeExtractor(ctx, ffprobe, path)
		if err != nil {
			return 0, err
		}
		defer ex.Close()

		for _, t := range ex.Tracks() {
			if t.IsAudio() {
				return time.Duration(t.DurationUs) * time.Microsecond, nil
			}
		}
		return 0, decoder.ErrNoAudioTrack
	}
}

// FirstOf tries each prober in order and returns the first success.
func FirstOf(probers ...DurationProber) DurationProber {
	return func(ctx context.Context, path string) (time.Duration, error) {
		var errs []error
		for _, p := range probers {
			d, err := p(ctx, path)
			if err == nil {
				return d, nil
			}
			errs = append(errs, err)
		}
		return 0, errors.Join(errs...)
	}
}
