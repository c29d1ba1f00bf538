// SPDX-License-Identifier: EPL-2.0

package recorder

import "errors"

var (
	ErrInvalidOutputFile    = errors.New("invalid output file")
	ErrInitializationFailed = errors.New("recorder initialization failed")
	ErrRecordingError       = errors.New("recording error")

	ErrIllegalState = errors.New("illegal recorder state")
	ErrNotRegular   = errors.New("not a regular file")
)
