// SPDX-License-Identifier: EPL-2.0

package decoder

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"strconv"

	"github.com/tidwall/gjson"
)

// ProbeExtractor lists tracks with ffprobe. Packets are plain file chunks;
// ffmpeg demuxes the container itself.
type ProbeExtractor struct {
	*packetReader
	tracks []Track
}

// NewProbeExtractor runs ffprobe on path. An empty ffprobe uses the binary
// found on PATH.
func NewProbeExtractor(ctx context.Context, ffprobe, path string) (*ProbeExtractor, error) {
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}

	out, err := exec.CommandContext(ctx, ffprobe,
		"-v", "error",
		"-show_streams",
		"-show_format",
		"-of", "json",
		path,
	).Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	tracks, err := parseProbe(out)
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	pr, err := openPacketReader(path, PacketSize)
	if err != nil {
		return nil, err
	}

	return &ProbeExtractor{packetReader: pr, tracks: tracks}, nil
}

// parseProbe turns ffprobe JSON into tracks. Audio tracks are numbered in
// the order ffmpeg's 0:a:N selector uses.
func parseProbe(data []byte) ([]Track, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidProbeOutput
	}

	doc := gjson.ParseBytes(data)
	formatDuration := doc.Get("format.duration").Float()

	var tracks []Track
	audioIndex := 0

	doc.Get("streams").ForEach(func(_, s gjson.Result) bool {
		kind := s.Get("codec_type").String()
		codec := s.Get("codec_name").String()

		t := Track{MIME: kind + "/" + codec}

		if kind == "audio" {
			t.StreamIndex = audioIndex
			audioIndex++

			t.SampleRate, _ = strconv.Atoi(s.Get("sample_rate").String())
			t.Channels = int(s.Get("channels").Int())

			d := s.Get("duration").Float()
			if d == 0 {
				d = formatDuration
			}
			t.DurationUs = int64(math.Round(d * 1e6))
		}

		tracks = append(tracks, t)
		return true
	})

	return tracks, nil
}

func (e *ProbeExtractor) Tracks() []Track { return e.tracks }

func (e *ProbeExtractor) SelectTrack(i int) error {
	if i < 0 || i >= len(e.tracks) {
		return fmt.Errorf("%w: %d", ErrTrackIndex, i)
	}

	e.selected = true
	e.offset = 0
	e.durationUs = e.tracks[i].DurationUs

	return nil
}
