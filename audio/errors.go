// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")
	ErrUnknownFormat  = errors.New("no format registered for input")
	ErrNoProber       = errors.New("format cannot be probed")
)
