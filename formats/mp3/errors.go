// SPDX-License-Identifier: EPL-2.0

package mp3

import "errors"

var (
	ErrInvalidSampleRate = errors.New("mp3 stream reports no sample rate")
	ErrUnknownLength     = errors.New("mp3 stream length unknown")
)
