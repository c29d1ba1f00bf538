// SPDX-License-Identifier: EPL-2.0

package formats

import (
	"path/filepath"
	"slices"

	"github.com/ik5/audwave/audio"
	"github.com/ik5/audwave/formats/aiff"
	"github.com/ik5/audwave/formats/flac"
	"github.com/ik5/audwave/formats/mp3"
	"github.com/ik5/audwave/formats/vorbis"
	"github.com/ik5/audwave/formats/wav"
)

// Decodable lists the extensions a decode job accepts. Only some of them have
// a native decoder; the rest need the ffmpeg backend.
var Decodable = []string{"mp3", "wav", "3gpp", "3gp", "amr", "aac", "m4a", "mp4", "ogg", "flac"}

// Builtin returns the formats shipped with this module.
func Builtin() []audio.Format {
	return []audio.Format{
		{Name: "wav", MIME: "audio/wav", Extensions: []string{"wav", "wave"}, Decoder: wav.Decoder{}, Prober: wav.Prober{}},
		{Name: "mp3", MIME: "audio/mpeg", Extensions: []string{"mp3"}, Decoder: mp3.Decoder{}, Prober: mp3.Prober{}},
		{Name: "vorbis", MIME: "audio/ogg", Extensions: []string{"ogg", "oga"}, Decoder: vorbis.Decoder{}, Prober: vorbis.Prober{}},
		{Name: "aiff", MIME: "audio/aiff", Extensions: []string{"aiff", "aif"}, Decoder: aiff.Decoder{}, Prober: aiff.Prober{}},
		{Name: "flac", MIME: "audio/flac", Extensions: []string{"flac"}, Decoder: flac.Decoder{}, Prober: flac.Prober{}},
	}
}

// Default returns a new registry holding every builtin format.
func Default() *audio.Registry {
	r := audio.NewRegistry()
	for _, f := range Builtin() {
		r.Register(f)
	}

	return r
}

// IsDecodable reports whether the extension of path is on the decode
// allow-list. A path without an extension is never decodable.
func IsDecodable(path string) bool {
	ext := filepath.Ext(path)
	if ext == "" {
		return false
	}

	return slices.Contains(Decodable, audio.NormalizeExt(ext))
}

// MIMEForExt guesses a MIME type for ext, covering the container formats that
// only the ffmpeg backend understands.
func MIMEForExt(r *audio.Registry, ext string) string {
	if f, ok := r.Lookup(ext); ok {
		return f.MIME
	}

	switch audio.NormalizeExt(ext) {
	case "3gp", "3gpp":
		return "audio/3gpp"
	case "amr":
		return "audio/amr"
	case "aac":
		return "audio/aac"
	case "m4a", "mp4":
		return "audio/mp4"
	}

	return ""
}
