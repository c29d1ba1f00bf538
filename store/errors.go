// SPDX-License-Identifier: EPL-2.0

package store

import "errors"

var (
	ErrNotFound      = errors.New("record not found")
	ErrUnknownDriver = errors.New("unknown storage driver")
)
