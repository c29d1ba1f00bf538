// SPDX-License-Identifier: EPL-2.0

package decoder

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ik5/audwave/audio"
)

// PacketSize is the size of the file chunks extractors hand out.
const PacketSize = 4 * 1024

// Track describes one stream of a container.
type Track struct {
	MIME       string
	SampleRate int
	Channels   int
	DurationUs int64
	// StreamIndex is the ordinal of the track among the audio streams.
	StreamIndex int
}

func (t Track) IsAudio() bool {
	return strings.HasPrefix(t.MIME, "audio/")
}

// Extractor walks the packets of the selected track. ReadSampleData copies
// the current packet into dst and returns io.EOF once the track is
// exhausted. Advance moves to the next packet and reports whether one
// exists.
type Extractor interface {
	Tracks() []Track
	SelectTrack(i int) error
	ReadSampleData(dst []byte) (int, error)
	SampleTime() int64
	Advance() bool
	Close() error
}

// selectAudioTrack picks the first audio track of ex.
func selectAudioTrack(ex Extractor) (Track, error) {
	for i, t := range ex.Tracks() {
		if !t.IsAudio() {
			continue
		}
		if err := ex.SelectTrack(i); err != nil {
			return Track{}, err
		}
		return t, nil
	}

	return Track{}, ErrNoAudioTrack
}

// packetReader slices a file into fixed size packets.
type packetReader struct {
	file       *os.File
	size       int64
	offset     int64
	packetSize int
	durationUs int64
	selected   bool
}

func openPacketReader(path string, packetSize int) (*packetReader, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	st, err := fh.Stat()
	if err != nil {
		fh.Close()
		return nil, fmt.Errorf("%w", err)
	}

	return &packetReader{file: fh, size: st.Size(), packetSize: packetSize}, nil
}

func (p *packetReader) packetLen() int {
	return int(min(int64(p.packetSize), p.size-p.offset))
}

func (p *packetReader) ReadSampleData(dst []byte) (int, error) {
	if !p.selected {
		return 0, ErrNoTrackChosen
	}
	if p.offset >= p.size {
		return 0, io.EOF
	}

	n := p.packetLen()
	if len(dst) < n {
		return 0, ErrShortInput
	}

	read, err := p.file.ReadAt(dst[:n], p.offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return read, fmt.Errorf("%w", err)
	}

	return read, nil
}

// SampleTime estimates the presentation time of the current packet from its
// byte offset.
func (p *packetReader) SampleTime() int64 {
	if p.size == 0 {
		return 0
	}
	return p.durationUs * p.offset / p.size
}

func (p *packetReader) Advance() bool {
	if p.offset >= p.size {
		return false
	}
	p.offset += int64(p.packetLen())
	return p.offset < p.size
}

func (p *packetReader) Close() error {
	if err := p.file.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// FileExtractor serves files the registry can probe. Every file has a single
// track.
type FileExtractor struct {
	*packetReader
	track Track
}

// NewFileExtractor probes path through reg.
func NewFileExtractor(reg *audio.Registry, path string) (*FileExtractor, error) {
	info, err := audio.ProbeFile(reg, path)
	if err != nil {
		return nil, err
	}

	f, _ := reg.ForPath(path)

	pr, err := openPacketReader(path, PacketSize)
	if err != nil {
		return nil, err
	}
	pr.durationUs = info.Duration.Microseconds()

	return &FileExtractor{
		packetReader: pr,
		track: Track{
			MIME:       f.MIME,
			SampleRate: info.SampleRate,
			Channels:   info.Channels,
			DurationUs: pr.durationUs,
		},
	}, nil
}

func (e *FileExtractor) Tracks() []Track { return []Track{e.track} }

func (e *FileExtractor) SelectTrack(i int) error {
	if i != 0 {
		return fmt.Errorf("%w: %d", ErrTrackIndex, i)
	}
	e.selected = true
	e.offset = 0
	return nil
}
