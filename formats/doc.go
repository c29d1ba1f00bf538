// SPDX-License-Identifier: EPL-2.0

// Package formats assembles the builtin audio formats into a registry.
//
//	reg := formats.Default()
//	dec, ok := reg.Get("flac")
//
// It also owns the decode allow-list. Extensions such as m4a or amr are
// accepted for decoding but have no native decoder, so they only work with
// the ffmpeg backend.
package formats
