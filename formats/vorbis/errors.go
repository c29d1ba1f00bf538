// SPDX-License-Identifier: EPL-2.0

package vorbis

import "errors"

var ErrNoChannels = errors.New("vorbis stream declares no audio")
