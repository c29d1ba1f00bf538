// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

type Source interface {
    // SampleRate of the PCM stream in Hz.
    SampleRate() int
    // Channels count (e.g., 1=mono, 2=stereo).
    Channels() int
    // ReadSamples fills dst with interleaved float32 samples in [-1,1].
    // Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
    ReadSamples(dst []float32) (n int, err error)

    BufSize() int

    // Close releases any resources.
    Close() error
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
    Decode(r io.Reader) (Source, error)
}

// Info describes a stream without decoding all of it.
type Info struct {
	SampleRate int
	Channels   int
	Duration   time.Duration
}

// Prober reads enough of a seekable input to report its Info.
type Prober interface {
	Probe(r io.ReadSeeker) (Info, error)
}

// Format ties a decoder and a prober to the extensions and MIME type it handles.
type Format struct {
	Name       string
	MIME       string
	Extensions []string
	Decoder    Decoder
	Prober     Prober
}

// Registry for formats by file extension (e.g., "wav", "mp3", "ogg").
type Registry struct {
    formats map[string]Format

    mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		formats: make(map[string]Format),
		mtx:     &sync.Mutex{},
	}
}

// Register adds f under each of its extensions, replacing earlier entries.
func (r *Registry) Register(f Format) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	for _, ext := range f.Extensions {
		r.formats[NormalizeExt(ext)] = f
	}
}

// Get returns the decoder registered for ext.
func (r *Registry) Get(ext string) (Decoder, bool) {
	f, ok := r.Lookup(ext)
	if !ok || f.Decoder == nil {
		return nil, false
	}

	return f.Decoder, true
}

// Lookup returns the full format registered for ext.
func (r *Registry) Lookup(ext string) (Format, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	f, ok := r.formats[NormalizeExt(ext)]
	return f, ok
}

// ByMIME finds the first registered format with the given MIME type.
func (r *Registry) ByMIME(mime string) (Format, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	for _, ext := range r.sortedExtsLocked() {
		if f := r.formats[ext]; strings.EqualFold(f.MIME, mime) {
			return f, true
		}
	}

	return Format{}, false
}

// ForPath resolves the format from the extension of path.
func (r *Registry) ForPath(path string) (Format, bool) {
	ext := filepath.Ext(path)
	if ext == "" {
		return Format{}, false
	}

	return r.Lookup(ext)
}

// Extensions lists every registered extension in sorted order.
func (r *Registry) Extensions() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return r.sortedExtsLocked()
}

func (r *Registry) sortedExtsLocked() []string {
	exts := make([]string, 0, len(r.formats))
	for ext := range r.formats {
		exts = append(exts, ext)
	}
	sort.Strings(exts)

	return exts
}

// NormalizeExt lower-cases ext and strips a leading dot.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
