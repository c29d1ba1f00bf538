// SPDX-License-Identifier: EPL-2.0

package decoder

import (
	"errors"
	"io"
	"os"
	"testing"

	"github.com/ik5/audwave/formats"
	"github.com/ik5/audwave/internal/audiotest"
)

func TestFileExtractor(t *testing.T) {
	t.Parallel()

	// 10000 mono frames: 20044 bytes on disk, five packets
	path := audiotest.WriteWAVFile(t, "ex.wav", 10000, 1, make([]int16, 10000))

	ex, err := NewFileExtractor(formats.Default(), path)
	if err != nil {
		t.Fatalf("NewFileExtractor() error = %v", err)
	}
	defer ex.Close()

	tracks := ex.Tracks()
	if len(tracks) != 1 {
		t.Fatalf("Tracks() = %v", tracks)
	}
	tr := tracks[0]
	if tr.MIME != "audio/wav" || tr.SampleRate != 10000 || tr.Channels != 1 || tr.DurationUs != 1_000_000 {
		t.Errorf("track = %+v", tr)
	}

	if _, err := ex.ReadSampleData(make([]byte, PacketSize)); !errors.Is(err, ErrNoTrackChosen) {
		t.Errorf("read before SelectTrack error = %v", err)
	}
	if err := ex.SelectTrack(1); !errors.Is(err, ErrTrackIndex) {
		t.Errorf("SelectTrack(1) error = %v", err)
	}
	if err := ex.SelectTrack(0); err != nil {
		t.Fatalf("SelectTrack(0) error = %v", err)
	}

	var (
		total   int
		packets int
		last    int64 = -1
	)
	buf := make([]byte, PacketSize)
	for {
		n, err := ex.ReadSampleData(buf)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("ReadSampleData() error = %v", err)
		}

		if ts := ex.SampleTime(); ts <= last {
			t.Errorf("SampleTime() = %d not increasing after %d", ts, last)
		} else {
			last = ts
		}

		total += n
		packets++
		if !ex.Advance() {
			break
		}
	}

	st, _ := os.Stat(path)
	if int64(total) != st.Size() {
		t.Errorf("read %d bytes, file has %d", total, st.Size())
	}
	if packets != 5 {
		t.Errorf("packets = %d, want 5", packets)
	}
	if ex.Advance() {
		t.Error("Advance() past the end = true")
	}
	if _, err := ex.ReadSampleData(buf); !errors.Is(err, io.EOF) {
		t.Errorf("read past the end error = %v, want io.EOF", err)
	}
}

func TestFileExtractor_Errors(t *testing.T) {
	t.Parallel()

	if _, err := NewFileExtractor(formats.Default(), touch(t, "clip.m4a")); err == nil {
		t.Error("NewFileExtractor() on a format without a prober succeeded")
	}

	path := audiotest.WriteWAVFile(t, "short.wav", 8000, 1, make([]int16, 4000))
	ex, err := NewFileExtractor(formats.Default(), path)
	if err != nil {
		t.Fatal(err)
	}
	defer ex.Close()

	_ = ex.SelectTrack(0)
	if _, err := ex.ReadSampleData(make([]byte, 16)); !errors.Is(err, ErrShortInput) {
		t.Errorf("short read error = %v, want ErrShortInput", err)
	}
}
