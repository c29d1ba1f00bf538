// SPDX-License-Identifier: EPL-2.0

package decoder

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	ErrDecodeFailed  = errors.New("decode failed")
	ErrNoAudioTrack  = errors.New("no audio track found")
	ErrNoDecoder     = errors.New("no native decoder for format")
	ErrCodecStopped  = errors.New("codec stopped")
	ErrShortInput    = errors.New("input buffer smaller than packet")
	ErrNotStarted    = errors.New("codec not started")
	ErrTrackIndex    = errors.New("track index out of range")
	ErrNoTrackChosen = errors.New("no track selected")

	ErrInvalidProbeOutput = errors.New("invalid ffprobe output")

	// ErrUnsupportedExtension is an I/O class error, it matches fs.ErrInvalid.
	ErrUnsupportedExtension = fmt.Errorf("unsupported audio extension: %w", fs.ErrInvalid)

	ErrIllegalTransition = errors.New("illegal decode state transition")
)
