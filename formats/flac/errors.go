// SPDX-License-Identifier: EPL-2.0

package flac

import "errors"

var ErrUnsupportedChannels = errors.New("flac stream has no usable channels")
